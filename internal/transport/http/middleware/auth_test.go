package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/handlegpt/cv/internal/infra/config"
	"github.com/handlegpt/cv/internal/infra/security"
	"github.com/handlegpt/cv/internal/usecase"
)

type memoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]struct{}
}

func (s *memoryRevocationStore) MarkRevoked(_ context.Context, tokenHash, _ string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = map[string]struct{}{}
	}
	s.entries[tokenHash] = struct{}{}
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[tokenHash]
	return ok, nil
}

func gatewaySettings() config.AuthSettings {
	return config.AuthSettings{
		ProtectedPrefixes: []string{"/dashboard", "/resumes", "/settings", "/api/resumes", "/api/settings"},
		LoginPath:         "/login",
	}
}

func newGatewayRouter(t *testing.T) (*gin.Engine, *usecase.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer, err := security.NewTokenSigner("test-secret", "cv-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenSigner returned error: %v", err)
	}
	tokens, err := usecase.NewTokenService(signer, &memoryRevocationStore{}, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	router := gin.New()
	router.Use(EnrichContext(), AuthGateway(tokens, gatewaySettings()))
	router.NoRoute(func(c *gin.Context) {
		userID, _ := GetAuthenticatedUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return router, tokens
}

func TestAuthGateway_UnprotectedPathPassesThrough(t *testing.T) {
	router, _ := newGatewayRouter(t)

	for _, path := range []string{"/", "/login", "/about", "/api/auth/login"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to pass through, got status %d", path, rec.Code)
		}
	}
}

func TestAuthGateway_APIPathDeniedWithJSON(t *testing.T) {
	router, _ := newGatewayRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resumes/123", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected error payload, got %s", rec.Body.String())
	}
}

func TestAuthGateway_PagePathRedirectsToLogin(t *testing.T) {
	router, _ := newGatewayRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resumes", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	if location.Path != "/login" {
		t.Fatalf("expected redirect to /login, got %s", location.Path)
	}
	if got := location.Query().Get("callbackUrl"); got != "/resumes" {
		t.Fatalf("expected callbackUrl=/resumes, got %q", got)
	}
}

func TestAuthGateway_RedirectPreservesNestedPath(t *testing.T) {
	router, _ := newGatewayRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/analytics", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	location, _ := url.Parse(rec.Header().Get("Location"))
	if got := location.Query().Get("callbackUrl"); got != "/dashboard/analytics" {
		t.Fatalf("expected callbackUrl=/dashboard/analytics, got %q", got)
	}
}

func TestAuthGateway_ValidBearerTokenPasses(t *testing.T) {
	router, tokens := newGatewayRouter(t)

	token, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "user-123") {
		t.Fatalf("expected authenticated user id in response, got %s", rec.Body.String())
	}
}

func TestAuthGateway_SessionCookieFallback(t *testing.T) {
	router, tokens := newGatewayRouter(t)

	token, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie, got %d", rec.Code)
	}
}

func TestAuthGateway_RevokedTokenDenied(t *testing.T) {
	router, tokens := newGatewayRouter(t)

	token, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := tokens.Revoke(context.Background(), token, "logout"); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", rec.Code)
	}
}

func TestAuthGateway_MalformedAuthorizationDenied(t *testing.T) {
	router, _ := newGatewayRouter(t)

	for _, header := range []string{"Bearer", "Basic abc", "Bearer  ", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		req.Header.Set("Authorization", header)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for header %q, got %d", header, rec.Code)
		}
	}
}

func TestRequireAuth_EnforcesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	signer, err := security.NewTokenSigner("test-secret", "cv-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenSigner returned error: %v", err)
	}
	tokens, err := usecase.NewTokenService(signer, &memoryRevocationStore{}, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	router := gin.New()
	router.GET("/api/auth/me", RequireAuth(tokens), func(c *gin.Context) {
		userID, _ := GetAuthenticatedUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}
