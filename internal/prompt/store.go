package prompt

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store resolves templates against per-user override files, falling back to
// the compiled-in defaults. Lookups never fail; a missing or invalid override
// simply yields the default.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir (normally the config directory)
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the override file path for kind
func (s *Store) Path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+"_prompt.txt")
}

// Override returns the stored override for kind, if one exists
func (s *Store) Override(kind Kind) (string, bool) {
	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Get returns the effective template for kind: a valid override when present,
// the default otherwise.
func (s *Store) Get(kind Kind) string {
	if text, ok := s.Override(kind); ok && Valid(kind, text) {
		return text
	}
	return Default(kind)
}

// Set persists an override for kind. The write goes through a temp file and
// rename so a reader never observes a partially written template.
func (s *Store) Set(kind Kind, text string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(kind)+"_prompt_*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(kind)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace template: %w", err)
	}
	return nil
}
