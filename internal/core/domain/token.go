package domain

import "time"

// TokenRevocation records that a specific session token must be treated as
// invalid for the remainder of its natural validity window.
type TokenRevocation struct {
	TokenHash string
	Subject   string
	Reason    string
	RevokedAt time.Time
	ExpiresAt time.Time
}

// TTL returns how long the revocation entry needs to live, measured from now.
// A non-positive result means the token has already expired and nothing needs
// to be stored.
func (r TokenRevocation) TTL(now time.Time) time.Duration {
	return r.ExpiresAt.Sub(now)
}
