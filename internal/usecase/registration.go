package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/infra/security"
	"github.com/handlegpt/cv/internal/repository"
)

const minDisplayNameLength = 2

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRegistration indicates the registration input failed validation.
	ErrInvalidRegistration = errors.New("invalid registration input")
)

// RegisterInput carries the fields of a sign-up request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// RegistrationService creates user accounts.
type RegistrationService struct {
	users     port.UserRepository
	hasher    *security.PasswordHasher
	passwords *security.PasswordValidator
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	users port.UserRepository,
	hasher *security.PasswordHasher,
	passwords *security.PasswordValidator,
	events port.EventPublisher,
	logger *zap.Logger,
) (*RegistrationService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if passwords == nil {
		return nil, fmt.Errorf("password validator is required")
	}

	return &RegistrationService{
		users:     users,
		hasher:    hasher,
		passwords: passwords,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Register validates the input, hashes the password, and stores the account.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidRegistration)
	}
	if len([]rune(name)) < minDisplayNameLength {
		return nil, fmt.Errorf("%w: name must be at least %d characters", ErrInvalidRegistration, minDisplayNameLength)
	}
	if err := s.passwords.Validate(input.Password, email, name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRegistration, err.Error())
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Email:        user.Email,
			Name:         user.Name,
			RegisteredAt: now,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil && s.logger != nil {
			s.logger.Warn("publish user registered event failed", zap.Error(err))
		}
	}

	return &user, nil
}
