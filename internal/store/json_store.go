package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore keeps users in memory and writes them to a single JSON file on Persist
type JSONStore struct {
	*MemoryStore
	dataDir   string
	usersFile string
}

// userDatabase is the on-disk layout of users.json
type userDatabase struct {
	Users []User `json:"users"`
}

// NewJSONStore creates a store persisting to <dataDir>/users.json
func NewJSONStore(dataDir string) *JSONStore {
	return &JSONStore{
		MemoryStore: NewMemoryStore(),
		dataDir:     dataDir,
		usersFile:   filepath.Join(dataDir, "users.json"),
	}
}

// Load reads users.json, creating an empty file when none exists
func (s *JSONStore) Load() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(s.usersFile)
	if errors.Is(err, os.ErrNotExist) {
		s.replace(nil)
		return s.write(nil)
	}
	if err != nil {
		return fmt.Errorf("failed to read users file: %w", err)
	}

	var db userDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return fmt.Errorf("failed to parse users JSON: %w", err)
	}

	s.replace(db.Users)
	return nil
}

// Persist writes users.json if anything changed since the last write
func (s *JSONStore) Persist() error {
	users, dirty := s.snapshot()
	if !dirty {
		return nil
	}
	if err := s.write(users); err != nil {
		return err
	}
	s.markClean()
	return nil
}

// write replaces users.json atomically via a temp file
func (s *JSONStore) write(users []User) error {
	if users == nil {
		users = []User{}
	}

	data, err := json.MarshalIndent(userDatabase{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	tmp := s.usersFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}
	if err := os.Rename(tmp, s.usersFile); err != nil {
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	return nil
}
