package kafka

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used in
// development environments where no broker is configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs cv.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         event.Email,
		"name":          event.Name,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("cv.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserLogin logs cv.user.login events.
func (p *StubPublisher) PublishUserLogin(_ context.Context, event domain.UserLoginEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"login_at":   event.LoginAt,
		"ip_address": event.IP,
		"metadata":   event.Metadata,
	}
	p.logEvent("cv.user.login", event.UserID, event.LoginAt, payload)
	return nil
}

// PublishTokenRevoked logs cv.token.revoked events.
func (p *StubPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"token_hash": event.TokenHash,
		"revoked_at": event.RevokedAt,
		"expires_at": event.ExpiresAt,
		"reason":     event.Reason,
		"metadata":   event.Metadata,
	}
	p.logEvent("cv.token.revoked", event.UserID, event.RevokedAt, payload)
	return nil
}

// PublishResumeChanged logs cv.resume.<action> events.
func (p *StubPublisher) PublishResumeChanged(_ context.Context, event domain.ResumeChangedEvent) error {
	payload := map[string]any{
		"resume_id":      event.ResumeID,
		"user_id":        event.UserID,
		"action":         event.Action,
		"resume_version": event.Version,
		"changed_at":     event.ChangedAt,
		"metadata":       event.Metadata,
	}
	p.logEvent(fmt.Sprintf("cv.resume.%s", event.Action), event.UserID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
