package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigEnv unsets DEVVAULT_FILE for the duration of the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	if orig, ok := os.LookupEnv("DEVVAULT_FILE"); ok {
		t.Cleanup(func() { os.Setenv("DEVVAULT_FILE", orig) })
	} else {
		t.Cleanup(func() { os.Unsetenv("DEVVAULT_FILE") })
	}
	os.Unsetenv("DEVVAULT_FILE")
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultVaultPath, cfg.VaultPath)
}

func TestLoad_FromEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), "team.vault")
	t.Setenv("DEVVAULT_FILE", "  "+path+" ")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, path, cfg.VaultPath)
}

func TestLoad_EmptyEnv(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DEVVAULT_FILE", " ")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_Directory(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DEVVAULT_FILE", t.TempDir())

	_, err := Load()

	assert.Error(t, err)
}
