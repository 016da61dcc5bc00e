package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/core/port"
	"github.com/handlegpt/cv/internal/infra/security"
	"github.com/handlegpt/cv/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates the authenticated subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// LocalIdentityResolver resolves email/password credentials against the user
// store. Missing accounts and wrong passwords are indistinguishable to the
// caller.
type LocalIdentityResolver struct {
	users  port.UserRepository
	hasher *security.PasswordHasher
}

// NewLocalIdentityResolver constructs a credential-backed identity resolver.
func NewLocalIdentityResolver(users port.UserRepository, hasher *security.PasswordHasher) *LocalIdentityResolver {
	return &LocalIdentityResolver{users: users, hasher: hasher}
}

// Resolve checks the password against the stored hash.
func (r *LocalIdentityResolver) Resolve(ctx context.Context, email, secret string) (*domain.User, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := r.hasher.Verify(secret, user.PasswordHash); err != nil {
		if errors.Is(err, security.ErrHashMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	return user, nil
}

var _ port.IdentityResolver = (*LocalIdentityResolver)(nil)

// AuthService coordinates sign-in, sign-out, and session lookups.
type AuthService struct {
	identity port.IdentityResolver
	users    port.UserRepository
	tokens   *TokenService
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	identity port.IdentityResolver,
	users port.UserRepository,
	tokens *TokenService,
	events port.EventPublisher,
	logger *zap.Logger,
) (*AuthService, error) {
	if identity == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}

	return &AuthService{
		identity: identity,
		users:    users,
		tokens:   tokens,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Login resolves credentials to a user and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.Profile{}, ErrInvalidCredentials
	}

	user, err := s.identity.Resolve(ctx, email, password)
	if err != nil {
		return "", domain.Profile{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", domain.Profile{}, fmt.Errorf("issue session token: %w", err)
	}

	if s.events != nil {
		event := domain.UserLoginEvent{
			EventID: uuid.NewString(),
			UserID:  user.ID,
			LoginAt: s.now().UTC(),
		}
		if err := s.events.PublishUserLogin(ctx, event); err != nil && s.logger != nil {
			s.logger.Warn("publish user login event failed", zap.Error(err))
		}
	}

	return token, user.Profile(), nil
}

// Logout revokes the presented session token. Revoking an already-expired
// token succeeds silently.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token, "logout")
}

// CurrentUser loads the profile for an authenticated subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		return domain.Profile{}, fmt.Errorf("load user: %w", err)
	}

	return user.Profile(), nil
}
