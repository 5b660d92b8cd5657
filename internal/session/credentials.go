package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credentials is durable storage for the bearer token, the only state that
// survives a restart. Consumers define this interface, not the file
// implementation.
type Credentials interface {
	// Load returns the stored token, or ErrNoCredential when none exists.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

var ErrNoCredential = errors.New("no stored credential")

// FileCredentials keeps the token in a single file under the user's config
// directory.
type FileCredentials struct {
	path string
}

func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{path: path}
}

// DefaultCredentialPath is <user config dir>/go_shop/token.
func DefaultCredentialPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "go_shop", "token"), nil
}

func (f *FileCredentials) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

func (f *FileCredentials) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

func (f *FileCredentials) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
