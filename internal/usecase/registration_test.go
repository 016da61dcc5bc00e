package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/handlegpt/cv/internal/infra/security"
)

func testHasher() *security.PasswordHasher {
	return security.NewPasswordHasher(security.Argon2Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func newTestRegistrationService(t *testing.T) (*RegistrationService, *stubUserRepository, *recordingPublisher) {
	t.Helper()

	users := newStubUserRepository()
	publisher := &recordingPublisher{}
	service, err := NewRegistrationService(
		users,
		testHasher(),
		security.DefaultPasswordValidator(6, 2),
		publisher,
		zaptest.NewLogger(t),
	)
	if err != nil {
		t.Fatalf("NewRegistrationService returned error: %v", err)
	}

	return service, users, publisher
}

func TestRegistrationService_Register(t *testing.T) {
	service, users, publisher := newTestRegistrationService(t)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "tr4verse-magnolia-91",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "tr4verse-magnolia-91" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}

	stored, err := users.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected user to be persisted: %v", err)
	}
	if stored.ID != user.ID {
		t.Fatalf("stored user id mismatch: %s != %s", stored.ID, user.ID)
	}

	if len(publisher.registered) != 1 {
		t.Fatalf("expected one registered event, got %d", len(publisher.registered))
	}
}

func TestRegistrationService_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestRegistrationService(t)

	input := RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "tr4verse-magnolia-91",
	}

	if _, err := service.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := service.Register(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegistrationService_Validation(t *testing.T) {
	service, _, _ := newTestRegistrationService(t)

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Name: "Alice", Password: "tr4verse-magnolia-91"}},
		{"malformed email", RegisterInput{Email: "not-an-email", Name: "Alice", Password: "tr4verse-magnolia-91"}},
		{"short name", RegisterInput{Email: "a@example.com", Name: "A", Password: "tr4verse-magnolia-91"}},
		{"short password", RegisterInput{Email: "a@example.com", Name: "Alice", Password: "abc"}},
		{"weak password", RegisterInput{Email: "a@example.com", Name: "Alice", Password: "password"}},
	}

	for _, tc := range cases {
		if _, err := service.Register(context.Background(), tc.input); !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("%s: expected ErrInvalidRegistration, got %v", tc.name, err)
		}
	}
}
