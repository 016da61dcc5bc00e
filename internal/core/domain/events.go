package domain

import "time"

// UserRegisteredEvent represents the payload for cv.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Name         string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserLoginEvent represents the payload for cv.user.login messages.
type UserLoginEvent struct {
	EventID  string
	UserID   string
	LoginAt  time.Time
	IP       *string
	Metadata map[string]any
}

// TokenRevokedEvent represents the payload for cv.token.revoked messages.
type TokenRevokedEvent struct {
	EventID   string
	UserID    string
	TokenHash string
	RevokedAt time.Time
	ExpiresAt time.Time
	Reason    string
	Metadata  map[string]any
}

// ResumeChangedEvent represents the payload for cv.resume.created,
// cv.resume.updated, and cv.resume.deleted messages.
type ResumeChangedEvent struct {
	EventID   string
	ResumeID  string
	UserID    string
	Action    string
	Version   int64
	ChangedAt time.Time
	Metadata  map[string]any
}
