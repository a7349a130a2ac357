// Package service implements the bookmark and settings operations on top
// of a storage backend. Each write is a load, mutate, save cycle followed
// by a background backup.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Backup receives the full state after every successful write.
type Backup interface {
	Bookmarks(list []domain.Bookmark)
	Settings(s domain.Settings)
}

type noBackup struct{}

func (noBackup) Bookmarks([]domain.Bookmark) {}
func (noBackup) Settings(domain.Settings)    {}

// Service is the record service.
type Service struct {
	store  store.Backend
	backup Backup
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New creates a service. backup may be nil.
func New(backend store.Backend, backup Backup, log logger.Logger, opts ...Option) *Service {
	if backup == nil {
		backup = noBackup{}
	}
	s := &Service{
		store:  backend,
		backup: backup,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp is millisecond precision so it survives every backend unchanged.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// List returns every bookmark in display order.
func (s *Service) List(ctx context.Context) ([]domain.Bookmark, error) {
	return s.load(ctx)
}

// ListVisible returns the public list.
func (s *Service) ListVisible(ctx context.Context) ([]domain.Bookmark, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.Bookmark, 0, len(list))
	for _, b := range list {
		if b.Visible {
			visible = append(visible, b)
		}
	}
	return visible, nil
}

// Get returns one bookmark.
func (s *Service) Get(ctx context.Context, id string) (domain.Bookmark, error) {
	list, err := s.load(ctx)
	if err != nil {
		return domain.Bookmark{}, err
	}
	i := domain.IndexOf(list, id)
	if i < 0 {
		return domain.Bookmark{}, notFound(id)
	}
	return list[i], nil
}

// Categories groups bookmarks by category in display order.
func (s *Service) Categories(ctx context.Context, visibleOnly bool) ([]domain.CategoryGroup, error) {
	var (
		list []domain.Bookmark
		err  error
	)
	if visibleOnly {
		list, err = s.ListVisible(ctx)
	} else {
		list, err = s.load(ctx)
	}
	if err != nil {
		return nil, err
	}
	return domain.GroupByCategory(list), nil
}

// Search ranks bookmarks against query. Hidden bookmarks are skipped
// unless visibleOnly is false.
func (s *Service) Search(ctx context.Context, query string, visibleOnly bool, limit int) ([]domain.SearchHit, error) {
	var (
		list []domain.Bookmark
		err  error
	)
	if visibleOnly {
		list, err = s.ListVisible(ctx)
	} else {
		list, err = s.load(ctx)
	}
	if err != nil {
		return nil, err
	}
	return domain.Search(query, list, limit), nil
}

// Create validates in and appends a new bookmark at the end of the list.
func (s *Service) Create(ctx context.Context, in domain.BookmarkInput) (domain.Bookmark, error) {
	clean, err := in.Sanitize()
	if err != nil {
		return domain.Bookmark{}, err
	}

	list, err := s.load(ctx)
	if err != nil {
		return domain.Bookmark{}, err
	}

	now := s.timestamp()
	created := domain.Bookmark{
		ID:          s.newID(),
		Title:       clean.Title,
		URL:         clean.URL,
		Category:    clean.Category,
		Description: clean.Description,
		Visible:     clean.IsVisible(),
		Order:       domain.NextOrder(list),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	list = append(list, created)

	if err := s.saveBookmarks(ctx, list); err != nil {
		return domain.Bookmark{}, err
	}
	s.logger.Info("bookmark created",
		logger.String("id", created.ID),
		logger.String("url", created.URL))
	return created, nil
}

// Update replaces the mutable fields of a bookmark. Order is untouched.
func (s *Service) Update(ctx context.Context, id string, in domain.BookmarkInput) (domain.Bookmark, error) {
	clean, err := in.Sanitize()
	if err != nil {
		return domain.Bookmark{}, err
	}

	list, err := s.load(ctx)
	if err != nil {
		return domain.Bookmark{}, err
	}
	i := domain.IndexOf(list, id)
	if i < 0 {
		return domain.Bookmark{}, notFound(id)
	}

	b := &list[i]
	b.Title = clean.Title
	b.URL = clean.URL
	b.Category = clean.Category
	b.Description = clean.Description
	b.Visible = clean.IsVisible()
	b.UpdatedAt = s.timestamp()
	updated := *b

	if err := s.saveBookmarks(ctx, list); err != nil {
		return domain.Bookmark{}, err
	}
	s.logger.Info("bookmark updated", logger.String("id", id))
	return updated, nil
}

// Delete removes a bookmark. Remaining orders are not compacted.
func (s *Service) Delete(ctx context.Context, id string) error {
	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := domain.IndexOf(list, id)
	if i < 0 {
		return notFound(id)
	}
	list = append(list[:i], list[i+1:]...)

	if err := s.saveBookmarks(ctx, list); err != nil {
		return err
	}
	s.logger.Info("bookmark deleted", logger.String("id", id))
	return nil
}

// ReorderBookmarks puts ids first, in the given order, and renumbers.
func (s *Service) ReorderBookmarks(ctx context.Context, ids []string) ([]domain.Bookmark, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	reordered := domain.ReorderBookmarks(list, ids)
	if err := s.saveBookmarks(ctx, reordered); err != nil {
		return nil, err
	}
	s.logger.Info("bookmarks reordered", logger.Int("requested", len(ids)))
	return reordered, nil
}

// ReorderCategories moves whole categories and renumbers.
func (s *Service) ReorderCategories(ctx context.Context, categories []string) ([]domain.Bookmark, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	reordered := domain.ReorderCategories(list, categories)
	if err := s.saveBookmarks(ctx, reordered); err != nil {
		return nil, err
	}
	s.logger.Info("categories reordered", logger.Strings("categories", categories))
	return reordered, nil
}

// Settings returns the current settings, saving the defaults on first read.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	current, err := s.store.LoadSettings(ctx)
	metrics.StorageOps.WithLabelValues("load_settings", storageResult(err)).Inc()
	switch {
	case errors.Is(err, store.ErrNotFound):
		defaults := domain.DefaultSettings()
		err = s.store.SaveSettings(ctx, defaults)
		metrics.StorageOps.WithLabelValues("save_settings", metrics.Result(err)).Inc()
		if err != nil {
			return domain.Settings{}, &StorageError{Op: "save settings", Err: err}
		}
		s.logger.Info("settings initialized with defaults")
		return defaults, nil
	case err != nil:
		return domain.Settings{}, &StorageError{Op: "load settings", Err: err}
	}
	return current.Normalize(), nil
}

// UpdateSettings merges patch into the stored settings.
func (s *Service) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	current, err := s.Settings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	merged, err := domain.MergeSettings(current, patch)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := s.saveSettings(ctx, merged); err != nil {
		return domain.Settings{}, err
	}
	s.logger.Info("settings updated", logger.String("theme", merged.Theme))
	return merged, nil
}

// load reads the collection and sorts it in display order.
func (s *Service) load(ctx context.Context) ([]domain.Bookmark, error) {
	list, err := s.store.LoadBookmarks(ctx)
	metrics.StorageOps.WithLabelValues("load_bookmarks", metrics.Result(err)).Inc()
	if err != nil {
		return nil, &StorageError{Op: "load bookmarks", Err: err}
	}
	if list == nil {
		list = []domain.Bookmark{}
	}
	domain.SortCanonical(list)
	return list, nil
}

func (s *Service) saveBookmarks(ctx context.Context, list []domain.Bookmark) error {
	err := s.store.SaveBookmarks(ctx, list)
	metrics.StorageOps.WithLabelValues("save_bookmarks", metrics.Result(err)).Inc()
	if err != nil {
		return &StorageError{Op: "save bookmarks", Err: err}
	}
	s.backup.Bookmarks(list)
	return nil
}

func (s *Service) saveSettings(ctx context.Context, value domain.Settings) error {
	err := s.store.SaveSettings(ctx, value)
	metrics.StorageOps.WithLabelValues("save_settings", metrics.Result(err)).Inc()
	if err != nil {
		return &StorageError{Op: "save settings", Err: err}
	}
	s.backup.Settings(value)
	return nil
}

// storageResult does not count a missing settings record as a failure.
func storageResult(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return "ok"
	}
	return metrics.Result(err)
}

func notFound(id string) error {
	return fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
}
