// Package tokenstore persists the single opaque auth token across runs.
// Absence of a stored token means unauthenticated; nothing else about the
// session survives a restart.
package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store reads and writes the persisted token file
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a token store rooted at path
func New(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.Named("tokenstore"),
	}
}

// Load returns the persisted token, or "" when none is stored
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save persists the token, replacing any previous one
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	s.logger.Debug("Token persisted", zap.String("path", s.path))
	return nil
}

// Clear removes the persisted token. Clearing an absent token is not an
// error; logout must be total.
func (s *Store) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove persisted token", zap.Error(err))
	}
}
