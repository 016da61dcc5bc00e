package security

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(Argon2Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(encoded, "argon2id$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	if err := hasher.Verify("correct horse battery staple", encoded); err != nil {
		t.Fatalf("Verify returned error for correct password: %v", err)
	}
	if err := hasher.Verify("wrong password", encoded); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
}

func TestPasswordHasherDistinctSalts(t *testing.T) {
	hasher := NewPasswordHasher(Argon2Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})

	first, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestPasswordHasherRejectsMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(DefaultArgon2Params())

	for _, encoded := range []string{"", "argon2id$v=19$bogus", "bcrypt$whatever", "argon2id$v=19$m=8,t=1,p=1$!!!$!!!"} {
		err := hasher.Verify("password", encoded)
		if err == nil || errors.Is(err, ErrHashMismatch) {
			t.Fatalf("expected malformed-hash error for %q, got %v", encoded, err)
		}
	}
}
