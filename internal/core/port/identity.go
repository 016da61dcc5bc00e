package port

import (
	"context"

	"github.com/handlegpt/cv/internal/core/domain"
)

// IdentityResolver resolves some proof of identity to a stored user. Local
// credential sign-in and provider-delegated sign-in are both implementations;
// the token layer only ever sees the resolved subject.
type IdentityResolver interface {
	Resolve(ctx context.Context, email, secret string) (*domain.User, error)
}
