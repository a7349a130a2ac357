// Package store defines the persistence contract shared by every storage driver.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ErrNotFound is returned by LoadSettings when nothing was saved yet.
var ErrNotFound = errors.New("record not found")

// Driver names accepted by the configuration.
const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Drivers lists every accepted storage driver.
var Drivers = []string{DriverJSON, DriverPostgres, DriverSQLite, DriverRedis, DriverMemory}

// Backend persists the bookmark collection and the settings singleton.
//
// Bookmark writes are whole-collection: SaveBookmarks receives every
// bookmark and the backend makes its stored state equal to it.
type Backend interface {
	// EnsureSchema prepares the storage. Idempotent, called once at startup.
	EnsureSchema(ctx context.Context) error

	LoadBookmarks(ctx context.Context) ([]domain.Bookmark, error)
	SaveBookmarks(ctx context.Context, all []domain.Bookmark) error

	// LoadSettings returns ErrNotFound when no settings were saved.
	LoadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, value domain.Settings) error

	Ping(ctx context.Context) error
	Close() error
}
