package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// ExportPayload is the full backup document. It can be fed back to Import.
type ExportPayload struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
	Settings  domain.Settings   `json:"settings"`
}

// ImportBookmark is one incoming record. Only Title and URL are required.
type ImportBookmark struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Visible     *bool     `json:"visible,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// ImportPayload is the body of an import request.
type ImportPayload struct {
	Bookmarks []ImportBookmark      `json:"bookmarks"`
	Settings  *domain.SettingsPatch `json:"settings,omitempty"`
	Overwrite bool                  `json:"overwrite"`
}

// ImportResult counts accepted records and lists the rejected ones.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Export returns every bookmark in display order plus the settings.
func (s *Service) Export(ctx context.Context) (ExportPayload, error) {
	list, err := s.load(ctx)
	if err != nil {
		return ExportPayload{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return ExportPayload{}, err
	}
	return ExportPayload{Bookmarks: list, Settings: settings}, nil
}

// Import appends the valid records of payload in payload order. Invalid
// records are reported in the result and skipped. With Overwrite the
// current collection is dropped first. The collection is saved once.
func (s *Service) Import(ctx context.Context, payload ImportPayload) (ImportResult, error) {
	result := ImportResult{Errors: []string{}}

	var list []domain.Bookmark
	if !payload.Overwrite {
		current, err := s.load(ctx)
		if err != nil {
			return result, err
		}
		list = current
	} else {
		list = []domain.Bookmark{}
	}

	used := make(map[string]struct{}, len(list)+len(payload.Bookmarks))
	for _, b := range list {
		used[b.ID] = struct{}{}
	}

	now := s.timestamp()
	next := domain.NextOrder(list)
	for i, item := range payload.Bookmarks {
		clean, err := domain.BookmarkInput{
			Title:       item.Title,
			URL:         item.URL,
			Category:    item.Category,
			Description: item.Description,
			Visible:     item.Visible,
		}.Sanitize()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("bookmark %d: %v", i, err))
			continue
		}

		id := item.ID
		if _, taken := used[id]; id == "" || taken {
			id = s.newID()
		}
		used[id] = struct{}{}

		created := now
		if !item.CreatedAt.IsZero() {
			created = item.CreatedAt.UTC().Truncate(time.Millisecond)
		}

		list = append(list, domain.Bookmark{
			ID:          id,
			Title:       clean.Title,
			URL:         clean.URL,
			Category:    clean.Category,
			Description: clean.Description,
			Visible:     clean.IsVisible(),
			Order:       next,
			CreatedAt:   created,
			UpdatedAt:   now,
		})
		next++
		result.Imported++
	}

	if err := s.saveBookmarks(ctx, list); err != nil {
		return ImportResult{Errors: []string{}}, err
	}

	if payload.Settings != nil {
		_, err := s.UpdateSettings(ctx, *payload.Settings)
		var storageErr *StorageError
		if errors.As(err, &storageErr) {
			return result, err
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("settings: %v", err))
		}
	}

	s.logger.Info("import completed",
		logger.Int("imported", result.Imported),
		logger.Int("rejected", len(result.Errors)),
		logger.Bool("overwrite", payload.Overwrite))
	return result, nil
}
