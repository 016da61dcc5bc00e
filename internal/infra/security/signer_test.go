package security

import (
	"errors"
	"testing"
	"time"
)

func newTestSigner(t *testing.T, secret string, lifetime time.Duration) *TokenSigner {
	t.Helper()

	signer, err := NewTokenSigner(secret, "cv-test", lifetime)
	if err != nil {
		t.Fatalf("NewTokenSigner returned error: %v", err)
	}
	return signer
}

func TestSignParseRoundTrip(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	claims, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("expected subject user-123, got %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatal("expected a token ID to be set")
	}
}

func TestSignProducesDistinctTokens(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)

	first, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	second, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct tokens for the same subject")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)
	other := newTestSigner(t, "different-secret", time.Hour)

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	if _, err := other.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := signer.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", raw, err)
		}
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)
	signer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	if _, err := signer.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestExtractExpiryOnExpiredToken(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	signer.WithClock(func() time.Time { return issuedAt })

	token, err := signer.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	subject, expiry, err := signer.ExtractExpiry(token)
	if err != nil {
		t.Fatalf("ExtractExpiry returned error: %v", err)
	}
	if subject != "user-123" {
		t.Fatalf("expected subject user-123, got %q", subject)
	}
	if want := issuedAt.Add(time.Hour); expiry.Unix() != want.Unix() {
		t.Fatalf("expected expiry %v, got %v", want.Unix(), expiry.Unix())
	}
}

func TestExtractExpiryRejectsForgedToken(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Hour)
	forger := newTestSigner(t, "attacker-secret", time.Hour)

	token, err := forger.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	if _, _, err := signer.ExtractExpiry(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestNewTokenSignerValidation(t *testing.T) {
	if _, err := NewTokenSigner("", "cv", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenSigner("secret", "", time.Hour); err == nil {
		t.Fatal("expected error for empty issuer")
	}
	if _, err := NewTokenSigner("secret", "cv", 0); err == nil {
		t.Fatal("expected error for zero lifetime")
	}
}
