package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"golang.org/x/term"

	"github.com/Nymos1111/dev-password-organizer/internal/storage"
	"github.com/Nymos1111/dev-password-organizer/pkg/vault"
)

// minPasswordScore is the zxcvbn score below which a new master password draws a warning
const minPasswordScore = 3

// session carries the vault path and the terminal streams of one invocation.
// The master password is read once per session and passed explicitly.
type session struct {
	path   string
	stdin  io.Reader
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newSession(path string, stdin io.Reader, stdout, stderr io.Writer) *session {
	return &session{
		path:   path,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}
}

// readPassword reads a password without echoing it when stdin is a terminal, and a
// plain line otherwise
func (s *session) readPassword(prompt string) (string, error) {
	fmt.Fprint(s.errOut, prompt)

	if f, ok := s.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readLine reads a line from the session input and trims spaces
func (s *session) readLine() string {
	text, err := s.in.ReadString('\n')
	if err != nil && text == "" {
		return ""
	}
	return strings.TrimSpace(text)
}

// newMasterPassword prompts for a new master password twice and warns when it is weak
func (s *session) newMasterPassword(prompt string) (string, error) {
	pw, err := s.readPassword(prompt)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", userError{msg: "master password must not be empty"}
	}

	confirm, err := s.readPassword("Confirm master password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", userError{msg: "passwords do not match"}
	}

	strength := zxcvbn.PasswordStrength(pw, []string{"devvault", filepath.Base(s.path)})
	if strength.Score < minPasswordScore {
		fmt.Fprintf(s.errOut, "warning: master password is weak (score %d/4, ~%.0f bits of entropy)\n",
			strength.Score, strength.Entropy)
	}
	return pw, nil
}

// open unlocks the vault at the session path, or creates one in memory when the file is
// absent. The returned bool reports whether the vault is new.
func (s *session) open() (*vault.Vault, bool, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(s.errOut, "Vault %s not found, creating a new one.\n", s.path)
		pw, err := s.newMasterPassword("Create a new master password: ")
		if err != nil {
			return nil, false, err
		}
		v, err := vault.New(pw)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}

	pw, err := s.readPassword("Enter master password: ")
	if err != nil {
		return nil, false, err
	}
	v, err := vault.Open(s.path, pw)
	if err != nil {
		return nil, false, describe(err, s.path)
	}
	s.warnSkipped(v)
	return v, false, nil
}

// openExisting unlocks the vault and fails when the file does not exist
func (s *session) openExisting() (*vault.Vault, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, userErrorf("vault %s not found", s.path)
	}
	v, _, err := s.open()
	return v, err
}

func (s *session) persist(v *vault.Vault) error {
	if err := v.Persist(s.path); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	fmt.Fprintf(s.out, "Changes saved to %s\n", s.path)
	return nil
}

func (s *session) warnSkipped(v *vault.Vault) {
	for _, sk := range v.Skipped() {
		fmt.Fprintf(s.errOut, "warning: credential %q in project %q has unsupported type %q and will be dropped on save\n",
			sk.Name, sk.Project, sk.Kind)
	}
}

// describe maps vault load failures to messages for the user
func describe(err error, path string) error {
	switch {
	case errors.Is(err, storage.ErrWrongPasswordOrCorruptFile):
		return userError{msg: "wrong master password or corrupted vault file"}
	case errors.Is(err, storage.ErrCorruptFile):
		return userErrorf("vault %s is corrupt", path)
	case errors.Is(err, storage.ErrFileNotFound):
		return userErrorf("vault %s not found", path)
	default:
		return err
	}
}
