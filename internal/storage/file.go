package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/Nymos1111/dev-password-organizer/internal/codec"
	"github.com/Nymos1111/dev-password-organizer/internal/crypto"
)

// fileStorage implements StorageService on a single container file laid out as
// ciphertext | salt, where the salt is the trailing crypto.SaltSize bytes.
type fileStorage struct{}

// newFileStorage creates a new file storage service
func newFileStorage() *fileStorage {
	return &fileStorage{}
}

// Load reads the container at path and decrypts it with a key derived from password
func (s *fileStorage) Load(path, password string) (*Contents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	if len(data) < crypto.SaltSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d-byte salt",
			ErrCorruptFile, len(data), crypto.SaltSize)
	}

	// Split off the salt (last SaltSize bytes)
	split := len(data) - crypto.SaltSize
	token := data[:split]
	salt := bytes.Clone(data[split:])

	contents, err := s.open(token, salt, password)
	if err != nil {
		// The cause is dropped so wrong passwords and damaged files look the same
		return nil, ErrWrongPasswordOrCorruptFile
	}
	return contents, nil
}

func (s *fileStorage) open(token, salt []byte, password string) (*Contents, error) {
	key, err := crypto.DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(key)

	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.Decrypt(token)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(plaintext)

	doc, err := codec.Unmarshal(plaintext)
	if err != nil {
		return nil, err
	}

	return &Contents{
		Projects: doc.Projects,
		Salt:     salt,
		Cipher:   c,
		Skipped:  doc.Skipped,
	}, nil
}

// Save encrypts the projects under the contents' cipher and atomically replaces the
// file at path with ciphertext | salt
func (s *fileStorage) Save(path string, contents *Contents) error {
	if contents == nil || contents.Cipher == nil {
		return errors.New("vault has no cipher context")
	}
	if len(contents.Salt) != crypto.SaltSize {
		return fmt.Errorf("%w: got %d bytes, want %d", crypto.ErrInvalidSaltLength, len(contents.Salt), crypto.SaltSize)
	}

	plaintext, err := codec.Marshal(contents.Projects)
	if err != nil {
		return fmt.Errorf("failed to encode vault: %w", err)
	}
	defer crypto.Zero(plaintext)

	token, err := contents.Cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt vault: %w", err)
	}

	container := make([]byte, 0, len(token)+len(contents.Salt))
	container = append(container, token...)
	container = append(container, contents.Salt...)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	// Temp file in the same directory, then rename over the target
	if err := atomic.WriteFile(path, bytes.NewReader(container)); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}
	return nil
}
