package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrTokenInvalid covers malformed payloads, tampered signatures, and
	// tokens signed with an unexpected method or secret. The cause is
	// deliberately not exposed to callers.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired indicates the token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token is expired")
)

// SessionClaims is the payload of a session token: the subject plus the
// registered time claims.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenSigner issues and parses HMAC-signed session tokens. Issuance is
// stateless; revocation state lives elsewhere.
type TokenSigner struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenSigner constructs a signer. The secret must be present; the
// configuration layer is responsible for refusing to start without one
// outside development.
func NewTokenSigner(secret, issuer string, lifetime time.Duration) (*TokenSigner, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if strings.TrimSpace(issuer) == "" {
		return nil, fmt.Errorf("issuer is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	return &TokenSigner{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// WithClock replaces the signer's clock, primarily for tests.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	if now != nil {
		s.now = now
	}
	return s
}

// Lifetime returns the configured token lifetime.
func (s *TokenSigner) Lifetime() time.Duration {
	return s.lifetime
}

// Sign produces a session token for the given subject.
func (s *TokenSigner) Sign(subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	now := s.now().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token signature and time claims and returns the decoded
// claims. All decode and verification failures collapse into ErrTokenInvalid
// except expiry, which callers may need to distinguish when revoking.
func (s *TokenSigner) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// ExtractExpiry decodes the token without enforcing time claims, returning
// the subject and expiry. It still verifies the signature: revocation must
// never be driven by claims an attacker can forge.
func (s *TokenSigner) ExtractExpiry(token string) (subject string, expiry time.Time, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", time.Time{}, ErrTokenInvalid
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithoutClaimsValidation())
	if err != nil || parsed == nil || !parsed.Valid {
		return "", time.Time{}, ErrTokenInvalid
	}

	if claims.ExpiresAt == nil || strings.TrimSpace(claims.Subject) == "" {
		return "", time.Time{}, ErrTokenInvalid
	}

	return claims.Subject, claims.ExpiresAt.Time, nil
}
