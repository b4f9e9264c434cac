package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	h1, err := HashPassword("Abcdef1!")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	h2, err := HashPassword("Abcdef1!")

	if err != nil {
		t.Fatalf("second hash failed: %v", err)
	}

	// salted: repeated hashing must not produce the same digest
	if h1 == h2 {
		t.Fatalf("expected distinct digests for same plaintext, got identical")
	}

	if h1 == "Abcdef1!" || strings.Contains(h1, "Abcdef1!") {
		t.Fatalf("digest leaks plaintext: %q", h1)
	}

	if !CheckPassword(h1, "Abcdef1!") {
		t.Fatalf("expected digest to verify against its plaintext")
	}

	if !CheckPassword(h2, "Abcdef1!") {
		t.Fatalf("expected second digest to verify against its plaintext")
	}
}

func TestHashPassword_CostFactor(t *testing.T) {
	h, err := HashPassword("some-password")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(h))

	if err != nil {
		t.Fatalf("could not read cost: %v", err)
	}

	if cost != 10 {
		t.Fatalf("cost = %d, want 10", cost)
	}
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("correct horse")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	tests := []struct {
		name  string
		hash  string
		plain string
		want  bool
	}{
		{name: "match", hash: h, plain: "correct horse", want: true},
		{name: "wrong password", hash: h, plain: "battery staple", want: false},
		{name: "empty plaintext", hash: h, plain: "", want: false},
		{name: "malformed digest", hash: "not-a-bcrypt-digest", plain: "correct horse", want: false},
		{name: "empty digest", hash: "", plain: "correct horse", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckPassword(tc.hash, tc.plain)

			if got != tc.want {
				t.Fatalf("CheckPassword(%q, %q) = %v, want %v", tc.hash, tc.plain, got, tc.want)
			}
		})
	}
}
