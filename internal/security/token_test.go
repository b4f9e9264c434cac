package security

import (
	"encoding/hex"
	"testing"
)

func TestNewVerifyToken(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		tok, err := NewVerifyToken()

		if err != nil {
			t.Fatalf("token generation failed: %v", err)
		}

		// 32 bytes hex encoded
		if len(tok) != 64 {
			t.Fatalf("token length = %d, want 64", len(tok))
		}

		if _, err := hex.DecodeString(tok); err != nil {
			t.Fatalf("token is not hex: %v", err)
		}

		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token generated: %s", tok)
		}

		seen[tok] = struct{}{}
	}
}
