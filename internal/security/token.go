package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewVerifyToken returns a fresh random token for email verification.
// 32 bytes of entropy, hex encoded so it survives URLs and JSON untouched.
func NewVerifyToken() (string, error) {
	buf := make([]byte, 32)

	_, err := rand.Read(buf)

	if err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
