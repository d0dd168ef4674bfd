package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns a hex-encoded random token for invitation and
// password-reset links.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
