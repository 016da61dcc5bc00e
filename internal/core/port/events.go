package port

import (
	"context"

	"github.com/handlegpt/cv/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserLogin(ctx context.Context, event domain.UserLoginEvent) error
	PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error
	PublishResumeChanged(ctx context.Context, event domain.ResumeChangedEvent) error
}
