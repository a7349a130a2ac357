package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store keeps one JSON value per bookmark plus a set of all ids.
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		client: client,
	}
}

// EnsureSchema has nothing to create in Redis.
func (s *Store) EnsureSchema(_ context.Context) error {
	return nil
}

// LoadBookmarks retrieves all bookmarks. The caller sorts them.
func (s *Store) LoadBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, AllBookmarksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// id in the set without a value, skip it
			continue
		}
		var bookmark domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bookmark); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookmark %s: %w", ids[i], err)
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// SaveBookmarks makes Redis hold exactly all, in one MULTI/EXEC.
func (s *Store) SaveBookmarks(ctx context.Context, all []domain.Bookmark) error {
	existing, err := s.client.SMembers(ctx, AllBookmarksKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	keep := make(map[string]struct{}, len(all))
	payloads := make([][]byte, len(all))
	for i, bookmark := range all {
		data, err := json.Marshal(bookmark)
		if err != nil {
			return fmt.Errorf("failed to marshal bookmark %s: %w", bookmark.ID, err)
		}
		payloads[i] = data
		keep[bookmark.ID] = struct{}{}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range existing {
			if _, ok := keep[id]; ok {
				continue
			}
			pipe.Del(ctx, BookmarkKey(id))
			pipe.SRem(ctx, AllBookmarksKey(), id)
		}
		for i, bookmark := range all {
			pipe.Set(ctx, BookmarkKey(bookmark.ID), payloads[i], 0)
			pipe.SAdd(ctx, AllBookmarksKey(), bookmark.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}

	return nil
}

// LoadSettings returns store.ErrNotFound when the key is missing.
func (s *Store) LoadSettings(ctx context.Context) (domain.Settings, error) {
	data, err := s.client.Get(ctx, SettingsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Settings{}, store.ErrNotFound
		}
		return domain.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

// SaveSettings stores the settings without expiry.
func (s *Store) SaveSettings(ctx context.Context, value domain.Settings) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, SettingsKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the shared client is closed by the app.
func (s *Store) Close() error { return nil }
