package storage

import (
	"errors"

	"github.com/Nymos1111/dev-password-organizer/internal/codec"
	"github.com/Nymos1111/dev-password-organizer/internal/crypto"
	"github.com/Nymos1111/dev-password-organizer/pkg/models"
)

var (
	// ErrFileNotFound is returned by Load when the vault file does not exist
	ErrFileNotFound = errors.New("vault file not found")

	// ErrCorruptFile is returned by Load when the file is too short to hold a salt
	ErrCorruptFile = errors.New("vault file is corrupt")

	// ErrWrongPasswordOrCorruptFile is returned by Load for any key derivation, decryption
	// or parsing failure. The two causes are deliberately indistinguishable.
	ErrWrongPasswordOrCorruptFile = errors.New("wrong master password or corrupted vault file")
)

// Contents is the decrypted state of a vault file together with the key context
// needed to write it back
type Contents struct {
	Projects map[string]*models.Project
	Salt     []byte
	Cipher   crypto.Cipher

	// Skipped lists credentials dropped on load because their kind is unknown
	Skipped []codec.Skipped
}

// StorageService defines the interface for vault file operations
type StorageService interface {
	// Load reads and decrypts the vault file at path
	Load(path, password string) (*Contents, error)

	// Save encrypts contents and replaces the vault file at path
	Save(path string, contents *Contents) error
}

// NewStorageService creates a new instance of the default storage service
func NewStorageService() StorageService {
	return newFileStorage()
}
