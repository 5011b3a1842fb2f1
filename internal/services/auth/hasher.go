package auth

import (
	"crypto/sha512"
	"encoding/hex"
)

// DigestLength is the length of a password digest in hex characters
const DigestLength = 2 * sha512.Size

// HashPassword returns hex(SHA-512(hex(SHA-512(plaintext)))).
//
// The digest is unsalted so that it stays byte-compatible with existing
// account records. Changing it requires migrating every stored digest.
func HashPassword(plaintext string) string {
	return hexSHA512(hexSHA512(plaintext))
}

func hexSHA512(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
