package account

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// verification tokens carry 32 bytes of entropy and stay valid for 24h
// from issuance.
const (
	tokenBytes    = 32
	TokenValidity = 24 * time.Hour
)

// NewVerificationToken returns a URL-safe random token.
func NewVerificationToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
