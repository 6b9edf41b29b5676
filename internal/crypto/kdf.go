package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters
const (
	SaltSize   = 16     // Salt length stored at the end of every vault file
	KeySize    = 32     // Derived key length (AES-256)
	Iterations = 100000 // HMAC-SHA256 rounds
)

// DeriveKey derives an encryption key from a password and salt using PBKDF2-HMAC-SHA256
func DeriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSaltLength, len(salt), SaltSize)
	}

	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New), nil
}

// GenerateSalt generates a cryptographically secure random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
