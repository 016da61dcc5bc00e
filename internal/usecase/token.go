package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/infra/security"
)

var (
	// ErrInvalidToken indicates the token is malformed, tampered with, or
	// signed with the wrong secret.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the token's validity window has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrTokenRevoked indicates the token was explicitly revoked before its
	// natural expiry.
	ErrTokenRevoked = errors.New("token revoked")
)

// TokenService issues, verifies, and revokes session tokens. Issuance is
// stateless; revocation writes a denylist entry that lives exactly as long as
// the token would have.
type TokenService struct {
	signer      *security.TokenSigner
	revocations port.RevocationStore
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewTokenService constructs a TokenService instance.
func NewTokenService(signer *security.TokenSigner, revocations port.RevocationStore, events port.EventPublisher, logger *zap.Logger) (*TokenService, error) {
	if signer == nil {
		return nil, fmt.Errorf("token signer is required")
	}
	if revocations == nil {
		return nil, fmt.Errorf("revocation store is required")
	}

	return &TokenService{
		signer:      signer,
		revocations: revocations,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// WithClock replaces the service clock, primarily for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		s.now = now
	}
	return s
}

// Lifetime reports the validity window of newly issued tokens.
func (s *TokenService) Lifetime() time.Duration {
	return s.signer.Lifetime()
}

// Issue creates a signed session token for the subject.
func (s *TokenService) Issue(subject string) (string, error) {
	token, err := s.signer.Sign(subject)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Verify checks the denylist first, then signature and time claims. A
// denylist hit short-circuits: no decode work is spent on a revoked token.
func (s *TokenService) Verify(ctx context.Context, token string) (*security.SessionClaims, error) {
	revoked, err := s.revocations.IsRevoked(ctx, security.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

// Revoke denylists the token for the remainder of its validity window. An
// already-expired token is a successful no-op; a token that fails signature
// verification is an error.
func (s *TokenService) Revoke(ctx context.Context, token, reason string) error {
	subject, expiry, err := s.signer.ExtractExpiry(token)
	if err != nil {
		return ErrInvalidToken
	}

	revocation := domain.TokenRevocation{
		TokenHash: security.HashToken(token),
		Subject:   subject,
		Reason:    reason,
		RevokedAt: s.now().UTC(),
		ExpiresAt: expiry,
	}

	ttl := revocation.TTL(revocation.RevokedAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.MarkRevoked(ctx, revocation.TokenHash, reason, ttl); err != nil {
		return fmt.Errorf("mark revoked: %w", err)
	}

	if s.events != nil {
		event := domain.TokenRevokedEvent{
			EventID:   uuid.NewString(),
			UserID:    subject,
			TokenHash: revocation.TokenHash,
			RevokedAt: revocation.RevokedAt,
			ExpiresAt: expiry,
			Reason:    reason,
		}
		if err := s.events.PublishTokenRevoked(ctx, event); err != nil && s.logger != nil {
			s.logger.Warn("publish token revoked event failed", zap.Error(err))
		}
	}

	return nil
}
