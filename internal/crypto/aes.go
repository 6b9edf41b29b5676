package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// tokenVersion is the first byte of every token and is bound as additional data
const tokenVersion byte = 0x01

// aesCipher implements Cipher using AES-256-GCM.
//
// Token layout: version (1) | nonce (12) | ciphertext | tag (16)
type aesCipher struct {
	gcm cipher.AEAD
}

func newAESCipher(key []byte) (*aesCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	// Create a new AES cipher block
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Create a new GCM mode
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}

	return &aesCipher{gcm: gcm}, nil
}

// Encrypt encrypts plaintext with a fresh random nonce
func (c *aesCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonceSize := c.gcm.NonceSize()
	token := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+c.gcm.Overhead())
	token[0] = tokenVersion

	// Generate a random nonce
	nonce := token[1 : 1+nonceSize]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Encrypt and authenticate the data
	return c.gcm.Seal(token, nonce, plaintext, token[:1]), nil
}

// Decrypt authenticates and decrypts a token. No plaintext is returned unless the tag verifies.
func (c *aesCipher) Decrypt(token []byte) ([]byte, error) {
	nonceSize := c.gcm.NonceSize()

	// Ensure the token is long enough
	if len(token) < 1+nonceSize+c.gcm.Overhead() {
		return nil, fmt.Errorf("%w: token too short", ErrIntegrity)
	}
	if token[0] != tokenVersion {
		return nil, fmt.Errorf("%w: unknown token version %#x", ErrIntegrity, token[0])
	}

	nonce, ciphertext := token[1:1+nonceSize], token[1+nonceSize:]

	// Decrypt and verify the data
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, token[:1])
	if err != nil {
		return nil, ErrIntegrity
	}

	return plaintext, nil
}
