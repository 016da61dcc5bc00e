package port

import (
	"context"
	"time"
)

// RevocationStore caches denylisted token identifiers until their natural
// expiry. Keys are hashes of the token string, never the token itself.
type RevocationStore interface {
	MarkRevoked(ctx context.Context, tokenHash string, reason string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
