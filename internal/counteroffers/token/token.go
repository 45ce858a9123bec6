// Package token mints the capability tokens that let a customer act on a
// counter offer without an account.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultBytes gives 256 bits of entropy, well above the 128-bit floor.
const DefaultBytes = 32

// MinBytes is the smallest accepted token size (128 bits).
const MinBytes = 16

// GenerateRandomToken returns size random bytes encoded as unpadded base64url.
func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomIssuer issues URL-safe tokens from crypto/rand.
type RandomIssuer struct {
	size int
}

// NewRandomIssuer creates an issuer producing tokens of size random bytes.
// Sizes below MinBytes are raised to MinBytes.
func NewRandomIssuer(size int) *RandomIssuer {
	if size < MinBytes {
		size = MinBytes
	}
	return &RandomIssuer{size: size}
}

// Issue mints a new token.
func (i *RandomIssuer) Issue() (string, error) {
	tok, err := GenerateRandomToken(i.size)
	if err != nil {
		return "", fmt.Errorf("generate counter offer token: %w", err)
	}
	return tok, nil
}
