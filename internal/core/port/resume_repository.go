package port

import (
	"context"

	"github.com/handlegpt/cv/internal/core/domain"
)

// ResumeUpdate carries the mutable fields of a resume update. Nil pointers
// leave the stored value untouched; every successful update increments the
// version counter.
type ResumeUpdate struct {
	Title    *string
	Content  *string
	Sections []byte
	Settings []byte
	Status   *domain.ResumeStatus
	IsPublic *bool
}

// ResumeRepository exposes persistence behavior for resumes. Every operation
// is scoped to the owning user; a resume belonging to another user behaves as
// if it did not exist.
type ResumeRepository interface {
	Create(ctx context.Context, resume domain.Resume) error
	GetByID(ctx context.Context, userID, id string) (*domain.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ResumeSummary, error)
	Update(ctx context.Context, userID, id string, update ResumeUpdate) (*domain.Resume, error)
	Delete(ctx context.Context, userID, id string) error
}
