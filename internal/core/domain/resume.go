package domain

import "time"

// ResumeStatus enumerates lifecycle states of a resume.
type ResumeStatus string

const (
	ResumeStatusDraft     ResumeStatus = "draft"
	ResumeStatusPublished ResumeStatus = "published"
)

// Resume mirrors the persisted representation in the resumes table.
// Sections and Settings are stored as JSON documents; the service treats them
// as opaque payloads owned by the editor client.
type Resume struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Sections  []byte
	Settings  []byte
	Status    ResumeStatus
	Language  string
	Template  string
	IsPublic  bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResumeSummary is the list projection: enough to render a collection view
// without hauling the full document.
type ResumeSummary struct {
	ID        string
	Title     string
	Status    ResumeStatus
	Language  string
	Template  string
	IsPublic  bool
	UpdatedAt time.Time
}
