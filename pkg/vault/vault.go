// Package vault is the entry point for opening, editing and persisting an encrypted
// vault of projects and credentials.
package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Nymos1111/dev-password-organizer/internal/codec"
	"github.com/Nymos1111/dev-password-organizer/internal/crypto"
	"github.com/Nymos1111/dev-password-organizer/internal/storage"
	"github.com/Nymos1111/dev-password-organizer/pkg/models"
)

// ErrClosed is returned when a closed vault is persisted or re-keyed
var ErrClosed = errors.New("vault is closed")

// Vault holds all projects together with the cipher bound to one master password and salt.
// A Vault is not safe for concurrent use.
type Vault struct {
	storage  storage.StorageService
	projects map[string]*models.Project
	salt     []byte
	cipher   crypto.Cipher
	skipped  []codec.Skipped
}

// New creates an empty vault protected by password under a freshly generated salt
func New(password string) (*Vault, error) {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer crypto.Zero(key)

	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Vault{
		storage:  storage.NewStorageService(),
		projects: make(map[string]*models.Project),
		salt:     salt,
		cipher:   c,
	}, nil
}

// Open loads and decrypts the vault file at path.
//
// It fails with storage.ErrFileNotFound when the file is absent, storage.ErrCorruptFile
// when it is too short, and storage.ErrWrongPasswordOrCorruptFile for any other
// decryption or parsing failure.
func Open(path, password string) (*Vault, error) {
	s := storage.NewStorageService()
	contents, err := s.Load(path, password)
	if err != nil {
		return nil, err
	}

	v := &Vault{
		storage:  s,
		projects: contents.Projects,
		salt:     contents.Salt,
		cipher:   contents.Cipher,
		skipped:  contents.Skipped,
	}
	if v.projects == nil {
		v.projects = make(map[string]*models.Project)
	}

	slog.Debug("vault opened", "path", path, "projects", len(v.projects))
	if len(v.skipped) > 0 {
		slog.Warn("skipped credentials of unknown kind", "path", path, "count", len(v.skipped))
	}
	return v, nil
}

// OpenOrCreate opens the vault at path, or creates a new empty vault when the file does
// not exist. The returned bool reports whether a new vault was created. A new vault is
// not written until Persist is called.
func OpenOrCreate(path, password string) (*Vault, bool, error) {
	v, err := Open(path, password)
	if err == nil {
		return v, false, nil
	}
	if !errors.Is(err, storage.ErrFileNotFound) {
		return nil, false, err
	}

	v, err = New(password)
	if err != nil {
		return nil, false, err
	}
	slog.Debug("vault created", "path", path)
	return v, true, nil
}

// AddProject creates a project, replacing any project with the same name
func (v *Vault) AddProject(name, description string) *models.Project {
	p := models.NewProject(name, description)
	v.projects[name] = p
	return p
}

// Project looks up a project by name
func (v *Vault) Project(name string) (*models.Project, bool) {
	p, ok := v.projects[name]
	return p, ok
}

// RemoveProject deletes the named project with all its credentials and reports whether
// it existed
func (v *Vault) RemoveProject(name string) bool {
	if _, ok := v.projects[name]; !ok {
		return false
	}
	delete(v.projects, name)
	return true
}

// ListProjects returns a snapshot of the projects sorted by name.
// The projects themselves are live, so credentials added to them are persisted.
func (v *Vault) ListProjects() []*models.Project {
	projects := make([]*models.Project, 0, len(v.projects))
	for _, p := range v.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects
}

// Salt returns a copy of the salt the vault key was derived with
func (v *Vault) Salt() []byte {
	return append([]byte(nil), v.salt...)
}

// Skipped lists credentials that were dropped on load because their kind is unknown.
// They are not written back by Persist.
func (v *Vault) Skipped() []codec.Skipped {
	return v.skipped
}

// Persist encrypts the vault and atomically writes it to path
func (v *Vault) Persist(path string) error {
	if v.cipher == nil {
		return ErrClosed
	}

	err := v.storage.Save(path, &storage.Contents{
		Projects: v.projects,
		Salt:     v.salt,
		Cipher:   v.cipher,
	})
	if err != nil {
		return err
	}

	slog.Debug("vault saved", "path", path, "projects", len(v.projects))
	return nil
}

// ChangePassword returns a new vault holding a copy of every project, protected by
// newPassword under a new salt. The receiver is left unchanged.
func (v *Vault) ChangePassword(newPassword string) (*Vault, error) {
	if v.cipher == nil {
		return nil, ErrClosed
	}

	next, err := New(newPassword)
	if err != nil {
		return nil, err
	}
	for name, p := range v.projects {
		next.projects[name] = p.Clone()
	}
	return next, nil
}

// Close drops the cipher context. A closed vault can no longer be persisted.
func (v *Vault) Close() {
	v.cipher = nil
}
