package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/sources"
)

// Importer is the write side the seeder needs.
type Importer interface {
	List(ctx context.Context) ([]domain.Bookmark, error)
	Import(ctx context.Context, payload service.ImportPayload) (service.ImportResult, error)
}

// Seeder imports a file into an empty collection on startup.
type Seeder struct {
	target Importer
	path   string
	format string
	logger logger.Logger
}

// NewSeeder creates a seeder. An empty format is detected from the extension.
func NewSeeder(target Importer, path, format string, log logger.Logger) *Seeder {
	return &Seeder{
		target: target,
		path:   path,
		format: format,
		logger: log,
	}
}

// Seed imports the file unless the collection already holds bookmarks.
// It reports whether an import happened.
func (sd *Seeder) Seed(ctx context.Context) (bool, error) {
	current, err := sd.target.List(ctx)
	if err != nil {
		return false, err
	}
	if len(current) > 0 {
		sd.logger.Debug("collection not empty, skipping seed",
			logger.Int("bookmarks", len(current)))
		return false, nil
	}

	payload, err := sources.Load(sd.path, sd.format)
	if err != nil {
		return false, fmt.Errorf("failed to load seed file: %w", err)
	}
	payload.Overwrite = false

	result, err := sd.target.Import(ctx, payload)
	if err != nil {
		return false, fmt.Errorf("failed to import seed file: %w", err)
	}

	for _, msg := range result.Errors {
		sd.logger.Warn("seed entry rejected", logger.String("reason", msg))
	}
	sd.logger.Info("seeded bookmarks",
		logger.String("file", sd.path),
		logger.Int("imported", result.Imported))
	return true, nil
}
