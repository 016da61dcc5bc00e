package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handlegpt/cv/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserProfile describes the account view returned by the API.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserProfile(profile domain.Profile) UserProfile {
	return UserProfile{
		ID:        profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegistrationResponse contains the created account.
type RegistrationResponse struct {
	User UserProfile `json:"user"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
	User      UserProfile `json:"user"`
}

// ResumeResponse is the full resume document.
type ResumeResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Sections  json.RawMessage `json:"sections"`
	Settings  json.RawMessage `json:"settings"`
	Status    string          `json:"status"`
	Language  string          `json:"language"`
	Template  string          `json:"template"`
	IsPublic  bool            `json:"is_public"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newResumeResponse(resume domain.Resume) ResumeResponse {
	return ResumeResponse{
		ID:        resume.ID,
		Title:     resume.Title,
		Content:   resume.Content,
		Sections:  json.RawMessage(resume.Sections),
		Settings:  json.RawMessage(resume.Settings),
		Status:    string(resume.Status),
		Language:  resume.Language,
		Template:  resume.Template,
		IsPublic:  resume.IsPublic,
		Version:   resume.Version,
		CreatedAt: resume.CreatedAt,
		UpdatedAt: resume.UpdatedAt,
	}
}

// ResumeSummaryResponse is the list projection of a resume.
type ResumeSummaryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Language  string    `json:"language"`
	Template  string    `json:"template"`
	IsPublic  bool      `json:"is_public"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newResumeSummaryResponse(summary domain.ResumeSummary) ResumeSummaryResponse {
	return ResumeSummaryResponse{
		ID:        summary.ID,
		Title:     summary.Title,
		Status:    string(summary.Status),
		Language:  summary.Language,
		Template:  summary.Template,
		IsPublic:  summary.IsPublic,
		UpdatedAt: summary.UpdatedAt,
	}
}

// ResumeListResponse wraps the resume collection.
type ResumeListResponse struct {
	Resumes []ResumeSummaryResponse `json:"resumes"`
}

// CreateResumeRequest defines the resume creation payload.
type CreateResumeRequest struct {
	Title    string          `json:"title" binding:"required"`
	Content  string          `json:"content"`
	Sections json.RawMessage `json:"sections"`
	Settings json.RawMessage `json:"settings"`
	Language string          `json:"language"`
	Template string          `json:"template"`
}

// UpdateResumeRequest defines the partial update payload. Absent fields are
// left unchanged.
type UpdateResumeRequest struct {
	Title    *string         `json:"title"`
	Content  *string         `json:"content"`
	Sections json.RawMessage `json:"sections"`
	Settings json.RawMessage `json:"settings"`
	Status   *string         `json:"status"`
	IsPublic *bool           `json:"is_public"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes the readiness payload with per-dependency results.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
