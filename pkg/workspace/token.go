package workspace

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
)

// GenerateToken returns a URL-safe random token of n bytes of entropy.
func GenerateToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken returns the hex-encoded SHA-256 of a raw token. Only hashes
// are stored; a leaked invites table yields no usable tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

const maxEmailLength = 254 // RFC 5321

// NormalizeEmail lowercases and trims an email address. All email
// comparisons in the invite flow go through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an email address for format and length.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email address is too long (max %d characters)", maxEmailLength)
	}
	if _, err := mail.ParseAddress(NormalizeEmail(email)); err != nil {
		return fmt.Errorf("invalid email address format")
	}
	return nil
}
