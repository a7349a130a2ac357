// Package memory is a process-local backend. Nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store keeps copies of the last saved collection and settings.
type Store struct {
	mu        sync.RWMutex
	bookmarks []domain.Bookmark
	settings  *domain.Settings
}

// New creates an empty store.
func New() *Store {
	return &Store{bookmarks: []domain.Bookmark{}}
}

func (s *Store) EnsureSchema(_ context.Context) error { return nil }

// LoadBookmarks returns a copy of the collection.
func (s *Store) LoadBookmarks(_ context.Context) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.bookmarks), nil
}

// SaveBookmarks replaces the collection.
func (s *Store) SaveBookmarks(_ context.Context, all []domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks = slices.Clone(all)
	if s.bookmarks == nil {
		s.bookmarks = []domain.Bookmark{}
	}
	return nil
}

func (s *Store) LoadSettings(_ context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return domain.Settings{}, store.ErrNotFound
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, value domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = &value
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
