package generator

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// Options configures secret generation
type Options struct {
	Length         int
	Lowercase      bool
	Uppercase      bool
	Digits         bool
	Symbols        bool
	ExcludeSimilar bool
}

// DefaultOptions returns options for a database password that can be pasted into a DSN
func DefaultOptions() Options {
	return Options{
		Length:         24,
		Lowercase:      true,
		Uppercase:      true,
		Digits:         true,
		Symbols:        true,
		ExcludeSimilar: true,
	}
}

// Character sets
const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	// No quotes, '@', ':', '/', '?' or '#', which break connection strings
	symbols = "-_.~!*+=%^"
	similar = "il1Lo0O"
)

// maxAttempts bounds the retries needed to hit every selected class
const maxAttempts = 100

// Generate creates a random secret containing at least one character of every selected class
func Generate(opts Options) (string, error) {
	var classes []string
	for _, c := range []struct {
		enabled bool
		set     string
	}{
		{opts.Lowercase, lowercase},
		{opts.Uppercase, uppercase},
		{opts.Digits, digits},
		{opts.Symbols, symbols},
	} {
		if !c.enabled {
			continue
		}
		set := c.set
		if opts.ExcludeSimilar {
			set = strings.Map(func(r rune) rune {
				if strings.ContainsRune(similar, r) {
					return -1
				}
				return r
			}, set)
		}
		classes = append(classes, set)
	}

	if len(classes) == 0 {
		return "", errors.New("no character set selected")
	}
	if opts.Length < len(classes) {
		return "", errors.New("length is too short to include every selected character set")
	}

	chars := strings.Join(classes, "")
	for attempt := 0; attempt < maxAttempts; attempt++ {
		secret := make([]byte, opts.Length)
		for i := range secret {
			idx, err := randomInt(len(chars))
			if err != nil {
				return "", err
			}
			secret[i] = chars[idx]
		}

		if coversAll(string(secret), classes) {
			return string(secret), nil
		}
	}

	return "", errors.New("failed to generate a secret covering every character set")
}

// coversAll reports whether s contains a character from every class
func coversAll(s string, classes []string) bool {
	for _, class := range classes {
		if !strings.ContainsAny(s, class) {
			return false
		}
	}
	return true
}

// randomInt generates a cryptographically secure random integer between 0 and max-1
func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
