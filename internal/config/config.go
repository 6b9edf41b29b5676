// Package config loads the vault location from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultVaultPath is used when DEVVAULT_FILE is not set
const DefaultVaultPath = "vault.encrypted"

// Config holds the settings the CLI resolves before any flag overrides.
type Config struct {
	VaultPath string
}

// Load reads configuration from environment variables and returns a validated Config.
// DEVVAULT_FILE names the vault file (default vault.encrypted). Passwords are never read
// from the environment.
func Load() (*Config, error) {
	path := DefaultVaultPath
	if v, ok := os.LookupEnv("DEVVAULT_FILE"); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("DEVVAULT_FILE is set but empty")
		}
		path = v
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("vault path %q is a directory", path)
	}

	return &Config{VaultPath: path}, nil
}
