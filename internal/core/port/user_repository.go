package port

import (
	"context"
	"time"

	"github.com/handlegpt/cv/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateName(ctx context.Context, id string, name string, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, updatedAt time.Time) error
}
