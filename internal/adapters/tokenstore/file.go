// internal/adapters/tokenstore/file.go

// Package tokenstore provides durable token persistence. The file store
// is the desktop analogue of the mobile secure store: a small JSON file
// with owner-only permissions, read once at cold start.
package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/phamduc/swapmart/internal/core/ports"
)

// FileStore persists the token pair as JSON on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// Statically assert that *FileStore implements the TokenStore interface.
var _ ports.TokenStore = (*FileStore)(nil)

// NewFileStore creates a file-backed token store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted pair. A missing file is not an error: it
// yields an empty pair, meaning an unauthenticated session.
func (s *FileStore) Load(_ context.Context) (ports.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ports.TokenPair{}, nil
		}
		return ports.TokenPair{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var pair ports.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return ports.TokenPair{}, fmt.Errorf("failed to parse token file: %w", err)
	}
	return pair, nil
}

// Save writes the pair atomically with owner-only permissions.
func (s *FileStore) Save(_ context.Context, pair ports.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Clear removes the persisted pair. A missing file is a no-op.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
