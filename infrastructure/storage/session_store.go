// Package storage persists the client's session across restarts. The
// durable state is two entries, the bearer token and the serialized
// current-user record, kept in one JSON file under the state directory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const sessionFileName = "session.json"

// SessionStore is the durable token/user store. It does not interpret
// the values; validation of what was read belongs to the session
// manager. Safe for concurrent use.
type SessionStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// sessionFile is the on-disk shape.
type sessionFile struct {
	Token string `json:"token"`
	User  string `json:"usuario"`
}

// NewSessionStore creates a store rooted at dir, creating it if needed.
func NewSessionStore(dir string, logger *zap.Logger) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &SessionStore{
		path:   filepath.Join(dir, sessionFileName),
		logger: logger,
	}, nil
}

// Load reads the persisted token and serialized user. A missing file is
// not an error; both values come back empty.
func (s *SessionStore) Load() (token, userJSON string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("read session file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt file is treated like an absent session; the caller
		// clears it and routes to login.
		s.logger.Warn("Session file is corrupt", zap.Error(err))
		return "", "", nil
	}
	return f.Token, f.User, nil
}

// Save writes both entries atomically: the file is either the previous
// session or the new one, never a partial mix.
func (s *SessionStore) Save(token, userJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionFile{Token: token, User: userJSON}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Idempotent.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Path returns the backing file path. Used in logs and tests.
func (s *SessionStore) Path() string {
	return s.path
}
