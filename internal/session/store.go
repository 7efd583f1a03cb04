package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"golang.org/x/oauth2"
)

const tokenFilePerms = 0600

// Store persists the single session token across restarts.
type Store interface {
	// Load returns the stored token, or nil if none is stored.
	Load() (*oauth2.Token, error)

	// Save replaces the stored token.
	Save(tok *oauth2.Token) error

	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// FileStore keeps the token as JSON in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path (usually config.TokenPath()).
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (s *FileStore) Path() string { return s.path }

// Load implements Store.
func (s *FileStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(s.path), err)
	}
	if tok.AccessToken == "" {
		return nil, nil
	}
	return &tok, nil
}

// Save implements Store. The write is atomic: readers see the old file or
// the new one, never a partial token.
func (s *FileStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(s.path, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to set token permissions: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	tok    *oauth2.Token
	saves  int
	clears int
}

// NewMemoryStore returns a store holding token, or an empty store if token is "".
func NewMemoryStore(token string) *MemoryStore {
	s := &MemoryStore{}
	if token != "" {
		s.tok = bearer(token)
	}
	return s
}

// Load implements Store.
func (s *MemoryStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return nil, nil
	}
	cp := *s.tok
	return &cp, nil
}

// Save implements Store.
func (s *MemoryStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tok
	s.tok = &cp
	s.saves++
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = nil
	s.clears++
	return nil
}

// Counts reports how many times Save and Clear were called.
func (s *MemoryStore) Counts() (saves, clears int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves, s.clears
}
