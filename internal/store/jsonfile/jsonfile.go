// Package jsonfile stores the whole collection as one JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// document is the on-disk layout.
type document struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
	Settings  *domain.Settings  `json:"settings,omitempty"`
}

// Store reads and overwrites a single JSON file. There is no per-record
// granularity: every save rewrites the document.
type Store struct {
	path string
	mu   sync.Mutex // guards against torn files, not lost updates
}

// New returns a store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// EnsureSchema creates the parent directory and an empty document when
// the file does not exist yet.
func (s *Store) EnsureSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat data file: %w", err)
	}
	return s.write(document{Bookmarks: []domain.Bookmark{}})
}

// LoadBookmarks returns the stored bookmarks in file order.
func (s *Store) LoadBookmarks(_ context.Context) ([]domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Bookmarks, nil
}

// SaveBookmarks replaces the bookmark list and keeps the settings.
func (s *Store) SaveBookmarks(_ context.Context, all []domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Bookmarks = all
	if doc.Bookmarks == nil {
		doc.Bookmarks = []domain.Bookmark{}
	}
	return s.write(doc)
}

// LoadSettings returns store.ErrNotFound until settings are saved once.
func (s *Store) LoadSettings(_ context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return domain.Settings{}, err
	}
	if doc.Settings == nil {
		return domain.Settings{}, store.ErrNotFound
	}
	return *doc.Settings, nil
}

// SaveSettings replaces the settings and keeps the bookmarks.
func (s *Store) SaveSettings(_ context.Context, value domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Settings = &value
	return s.write(doc)
}

// Ping checks that the document is readable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.read()
	return err
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) read() (document, error) {
	var doc document

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse data file: %w", err)
	}
	return doc, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data file: %w", err)
	}
	return WriteFileAtomic(s.path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// over path.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}
