package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// tokenBytes is the raw entropy behind a token value; 32 bytes before
// URL-safe encoding.
const tokenBytes = 32

type Token struct {
	ID        int64
	UserID    string
	Value     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Valid reports whether the token can still be consumed: never used and
// not yet expired. A consumed token stays invalid forever, whatever its
// expiry says.
func (t Token) Valid(now time.Time) bool {
	if t.UsedAt != nil {
		return false
	}
	return now.Before(t.ExpiresAt)
}

// NewValue generates a cryptographically random, URL-safe token string.
func NewValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
