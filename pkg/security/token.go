package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// TokenBytes is the entropy behind email verification and password reset tokens.
const TokenBytes = 32

// GenerateToken returns n random bytes hex encoded.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateShareCode returns an upper-case hex code of exactly length characters.
func GenerateShareCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}
	raw, err := GenerateToken((length + 1) / 2)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(raw[:length]), nil
}
