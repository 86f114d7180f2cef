// Package auth provides the password hashing used at registration and
// login. It exists only to yield a "current user" identity; there is no
// authorization model on top of it.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 10_000
	keyLength  = 32
)

// GenerateSalt returns a fresh random salt, base64-encoded for storage
// in its own column next to the hash.
func GenerateSalt() (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// HashPassword derives a PBKDF2-SHA256 hash of the password under the
// given stored salt.
func HashPassword(password, saltBase64 string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return "", fmt.Errorf("malformed salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// Verify reports whether the password matches the stored hash and salt.
func Verify(password, saltBase64, hashBase64 string) bool {
	computed, err := HashPassword(password, saltBase64)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hashBase64)) == 1
}
