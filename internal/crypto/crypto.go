package crypto

import "errors"

var (
	// ErrIntegrity is returned when a token fails authentication or is malformed
	ErrIntegrity = errors.New("ciphertext failed integrity check")

	// ErrInvalidKeySize is returned when a cipher is built from a key that is not KeySize bytes
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidSaltLength is returned when a salt is not SaltSize bytes
	ErrInvalidSaltLength = errors.New("invalid salt length")
)

// Cipher provides authenticated encryption under a single key
type Cipher interface {
	// Encrypt seals plaintext into a self-contained token
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt verifies and opens a token produced by Encrypt
	Decrypt(token []byte) ([]byte, error)
}

// NewCipher creates the default authenticated cipher for the given key
func NewCipher(key []byte) (Cipher, error) {
	c, err := newAESCipher(key)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Zero overwrites b in place
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
