package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/handlegpt/cv/internal/infra/config"
	"github.com/handlegpt/cv/internal/usecase"
)

// SessionCookieName is the cookie consulted when no Authorization header is
// present, so browser page navigation stays authenticated.
const SessionCookieName = "cv_session"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// AuthGateway guards configured path prefixes. Requests outside the
// protected set pass through untouched. Denials are bifurcated by surface:
// API paths get a 401 JSON body, page paths get a 302 to the login page with
// the original path preserved in callbackUrl.
func AuthGateway(tokens *usecase.TokenService, cfg config.AuthSettings) gin.HandlerFunc {
	prefixes := make([]string, 0, len(cfg.ProtectedPrefixes))
	for _, prefix := range cfg.ProtectedPrefixes {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			prefixes = append(prefixes, trimmed)
		}
	}

	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !isProtectedPath(path, prefixes) {
			c.Next()
			return
		}

		token, ok := extractToken(c)
		if !ok {
			denyRequest(c, loginPath, path, "authentication required")
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), token)
		if err != nil {
			// All verification failures look the same to the client.
			denyRequest(c, loginPath, path, "invalid or expired session")
			return
		}

		setAuthenticatedUser(c, claims.Subject, token)
		c.Next()
	}
}

// RequireAuth enforces a valid session on individual routes regardless of
// the gateway's prefix list. It always answers 401 JSON on failure.
func RequireAuth(tokens *usecase.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetAuthenticatedUserID(c); ok {
			c.Next()
			return
		}

		token, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid or expired session"))
			return
		}

		setAuthenticatedUser(c, claims.Subject, token)
		c.Next()
	}
}

// isProtectedPath reports whether the path falls under any guarded prefix.
func isProtectedPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractToken pulls the session token from the Authorization header,
// falling back to the session cookie.
func extractToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		cookie = strings.TrimSpace(cookie)
		return cookie, cookie != ""
	}

	return "", false
}

// GetSessionToken returns the verified session token for the request, when
// one was accepted by the gateway.
func GetSessionToken(c *gin.Context) (string, bool) {
	value, exists := c.Get("session_token")
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok && token != ""
}

func setAuthenticatedUser(c *gin.Context, userID, token string) {
	c.Set(UserIDKey, userID)
	c.Set("session_token", token)

	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = userID
	}
}

func denyRequest(c *gin.Context, loginPath, path, message string) {
	if strings.HasPrefix(path, "/api/") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, message))
		return
	}

	target := loginPath + "?callbackUrl=" + url.QueryEscape(path)
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
