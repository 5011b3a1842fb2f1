package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabets used for generated secrets and tokens
const (
	// Base32Alphabet is the RFC 4648 base32 alphabet used for TOTP secrets
	Base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	// TokenAlphabet is URL safe and used for session tokens
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// Random provides random string generation that can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) (string, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String generates a cryptographically random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) (string, error) {
	if length <= 0 || len(alphabet) == 0 {
		return "", nil
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result), nil
}
