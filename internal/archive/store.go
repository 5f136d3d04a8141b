package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is the archive file the server reads when none is configured.
const DefaultPath = "gopher_archive.json"

var (
	ErrArchiveUnreadable = errors.New("archive unreadable")
	ErrArchiveWrite      = errors.New("archive write failed")
)

// Store reads and writes the archive ledger on disk.
// Load reads the file fresh on every call; nothing is cached.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	return s.path
}

// Load returns every entry in the archive.
// A missing file is an empty archive, not an error.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrArchiveUnreadable, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArchiveUnreadable, s.path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// Save overwrites the archive with entries, indented the way the batch
// tooling has always written it. Only offline tooling calls this.
func (s *Store) Save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveWrite, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrArchiveWrite, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveWrite, err)
	}
	return nil
}
