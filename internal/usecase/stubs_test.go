package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/repository"
)

type stubUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{users: map[string]domain.User{}}
}

func (s *stubUserRepository) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *stubUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) UpdateName(_ context.Context, id string, name string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Name = name
	user.UpdatedAt = updatedAt
	s.users[id] = user
	return nil
}

func (s *stubUserRepository) UpdatePassword(_ context.Context, id string, passwordHash string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	s.users[id] = user
	return nil
}

var _ port.UserRepository = (*stubUserRepository)(nil)

type stubResumeRepository struct {
	mu      sync.Mutex
	resumes map[string]domain.Resume
}

func newStubResumeRepository() *stubResumeRepository {
	return &stubResumeRepository{resumes: map[string]domain.Resume{}}
}

func (s *stubResumeRepository) Create(_ context.Context, resume domain.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumes[resume.ID] = resume
	return nil
}

func (s *stubResumeRepository) GetByID(_ context.Context, userID, id string) (*domain.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resume, ok := s.resumes[id]
	if !ok || resume.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := resume
	return &copied, nil
}

func (s *stubResumeRepository) ListByUser(_ context.Context, userID string) ([]domain.ResumeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := make([]domain.ResumeSummary, 0)
	for _, resume := range s.resumes {
		if resume.UserID != userID {
			continue
		}
		summaries = append(summaries, domain.ResumeSummary{
			ID:        resume.ID,
			Title:     resume.Title,
			Status:    resume.Status,
			Language:  resume.Language,
			Template:  resume.Template,
			IsPublic:  resume.IsPublic,
			UpdatedAt: resume.UpdatedAt,
		})
	}
	return summaries, nil
}

func (s *stubResumeRepository) Update(_ context.Context, userID, id string, update port.ResumeUpdate) (*domain.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resume, ok := s.resumes[id]
	if !ok || resume.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if update.Title != nil {
		resume.Title = *update.Title
	}
	if update.Content != nil {
		resume.Content = *update.Content
	}
	if update.Sections != nil {
		resume.Sections = update.Sections
	}
	if update.Settings != nil {
		resume.Settings = update.Settings
	}
	if update.Status != nil {
		resume.Status = *update.Status
	}
	if update.IsPublic != nil {
		resume.IsPublic = *update.IsPublic
	}
	resume.Version++
	resume.UpdatedAt = time.Now().UTC()
	s.resumes[id] = resume
	copied := resume
	return &copied, nil
}

func (s *stubResumeRepository) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resume, ok := s.resumes[id]
	if !ok || resume.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.resumes, id)
	return nil
}

var _ port.ResumeRepository = (*stubResumeRepository)(nil)

type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	logins     []domain.UserLoginEvent
	revoked    []domain.TokenRevokedEvent
	resumes    []domain.ResumeChangedEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishUserLogin(_ context.Context, event domain.UserLoginEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, event)
	return nil
}

func (p *recordingPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, event)
	return nil
}

func (p *recordingPublisher) PublishResumeChanged(_ context.Context, event domain.ResumeChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes = append(p.resumes, event)
	return nil
}

var _ port.EventPublisher = (*recordingPublisher)(nil)
