package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/repository"
)

var (
	// ErrResumeNotFound indicates the resume does not exist or belongs to
	// another user.
	ErrResumeNotFound = errors.New("resume not found")
	// ErrInvalidResume indicates the resume input failed validation.
	ErrInvalidResume = errors.New("invalid resume input")
)

const (
	defaultResumeLanguage = "en"
	defaultResumeTemplate = "modern"
)

// CreateResumeInput carries the fields of a resume creation request.
type CreateResumeInput struct {
	Title    string
	Content  string
	Sections json.RawMessage
	Settings json.RawMessage
	Language string
	Template string
}

// UpdateResumeInput carries partial changes; nil fields are left untouched.
type UpdateResumeInput struct {
	Title    *string
	Content  *string
	Sections json.RawMessage
	Settings json.RawMessage
	Status   *domain.ResumeStatus
	IsPublic *bool
}

// ResumeService manages a user's resumes. All operations are owner-scoped:
// another user's resume behaves exactly like a missing one.
type ResumeService struct {
	resumes port.ResumeRepository
	events  port.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewResumeService constructs a ResumeService instance.
func NewResumeService(resumes port.ResumeRepository, events port.EventPublisher, logger *zap.Logger) (*ResumeService, error) {
	if resumes == nil {
		return nil, fmt.Errorf("resume repository is required")
	}

	return &ResumeService{
		resumes: resumes,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Create stores a new resume in draft state.
func (s *ResumeService) Create(ctx context.Context, userID string, input CreateResumeInput) (*domain.Resume, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidResume)
	}
	sections, err := normalizeDocument(input.Sections)
	if err != nil {
		return nil, fmt.Errorf("%w: sections must be a JSON document", ErrInvalidResume)
	}
	settings, err := normalizeDocument(input.Settings)
	if err != nil {
		return nil, fmt.Errorf("%w: settings must be a JSON document", ErrInvalidResume)
	}

	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = defaultResumeLanguage
	}
	template := strings.TrimSpace(input.Template)
	if template == "" {
		template = defaultResumeTemplate
	}

	now := s.now().UTC()
	resume := domain.Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   input.Content,
		Sections:  sections,
		Settings:  settings,
		Status:    domain.ResumeStatusDraft,
		Language:  language,
		Template:  template,
		IsPublic:  false,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}

	s.publishChange(ctx, resume, "created")

	return &resume, nil
}

// Get loads a single resume owned by userID.
func (s *ResumeService) Get(ctx context.Context, userID, id string) (*domain.Resume, error) {
	resume, err := s.resumes.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResumeNotFound
		}
		return nil, fmt.Errorf("load resume: %w", err)
	}
	return resume, nil
}

// List returns summaries of the user's resumes, most recently updated first.
func (s *ResumeService) List(ctx context.Context, userID string) ([]domain.ResumeSummary, error) {
	summaries, err := s.resumes.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return summaries, nil
}

// Update applies partial changes and bumps the stored version.
func (s *ResumeService) Update(ctx context.Context, userID, id string, input UpdateResumeInput) (*domain.Resume, error) {
	update := port.ResumeUpdate{
		Content:  input.Content,
		Status:   input.Status,
		IsPublic: input.IsPublic,
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidResume)
		}
		update.Title = &title
	}
	if input.Status != nil {
		switch *input.Status {
		case domain.ResumeStatusDraft, domain.ResumeStatusPublished:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidResume, *input.Status)
		}
	}
	if input.Sections != nil {
		sections, err := normalizeDocument(input.Sections)
		if err != nil {
			return nil, fmt.Errorf("%w: sections must be a JSON document", ErrInvalidResume)
		}
		update.Sections = sections
	}
	if input.Settings != nil {
		settings, err := normalizeDocument(input.Settings)
		if err != nil {
			return nil, fmt.Errorf("%w: settings must be a JSON document", ErrInvalidResume)
		}
		update.Settings = settings
	}

	resume, err := s.resumes.Update(ctx, userID, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResumeNotFound
		}
		return nil, fmt.Errorf("update resume: %w", err)
	}

	s.publishChange(ctx, *resume, "updated")

	return resume, nil
}

// Delete removes a resume owned by userID.
func (s *ResumeService) Delete(ctx context.Context, userID, id string) error {
	if err := s.resumes.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResumeNotFound
		}
		return fmt.Errorf("delete resume: %w", err)
	}

	s.publishChange(ctx, domain.Resume{ID: id, UserID: userID}, "deleted")

	return nil
}

func (s *ResumeService) publishChange(ctx context.Context, resume domain.Resume, action string) {
	if s.events == nil {
		return
	}

	event := domain.ResumeChangedEvent{
		EventID:   uuid.NewString(),
		ResumeID:  resume.ID,
		UserID:    resume.UserID,
		Action:    action,
		Version:   resume.Version,
		ChangedAt: s.now().UTC(),
	}
	if err := s.events.PublishResumeChanged(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish resume changed event failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// normalizeDocument validates a JSON payload, defaulting nil to an empty
// object.
func normalizeDocument(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid json")
	}
	return raw, nil
}
