package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	encoded, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	if err := hasher.Verify("correct-horse-battery", encoded); err != nil {
		t.Fatalf("Verify failed on match: %v", err)
	}
	if err := hasher.Verify("wrong-password", encoded); !errors.Is(err, ErrMismatch) {
		t.Fatalf("got %v, want ErrMismatch", err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	a, _ := hasher.Hash("same-password-123")
	b, _ := hasher.Hash("same-password-123")
	if a == b {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	malformed := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$not-base64!$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
	}
	for _, encoded := range malformed {
		if err := hasher.Verify("anything", encoded); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("Verify(%q) = %v, want ErrMalformedHash", encoded, err)
		}
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	weak := DefaultConfig()
	weak.Memory = 1024
	if _, err := NewArgon2(weak); err == nil {
		t.Fatal("expected rejection of low memory cost")
	}

	short := DefaultConfig()
	short.SaltLength = 4
	if _, err := NewArgon2(short); err == nil {
		t.Fatal("expected rejection of short salt")
	}
}
