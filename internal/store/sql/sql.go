// Package sqlstore keeps bookmarks in a relational table through gorm.
// Postgres is the production driver; SQLite serves local setups and tests.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

const upsertBatchSize = 200

// Options configures the connection pool.
type Options struct {
	Driver          string        // store.DriverPostgres or store.DriverSQLite
	DSN             string        // postgres DSN or sqlite path (":memory:" allowed)
	MaxOpenConns    int           // ignored for sqlite, which always uses one connection
	MaxIdleConns    int           // idle pool size
	ConnMaxLifetime time.Duration // recycle connections after this long
	SlowThreshold   time.Duration // queries slower than this are logged
}

// Store implements store.Backend on top of gorm.
type Store struct {
	db *gorm.DB
}

// Open connects with the configured driver and tunes the pool.
func Open(opts Options, log logger.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case store.DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case store.DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, opts.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if opts.Driver == store.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm handle.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates or migrates the tables. Safe to run repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&bookmarkRow{}, &settingsRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// LoadBookmarks reads every row ordered by "order", then created_at.
func (s *Store) LoadBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	var rows []bookmarkRow
	err := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}

	out := make([]domain.Bookmark, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// SaveBookmarks upserts every bookmark and deletes rows that are no longer
// part of the collection, in one transaction.
func (s *Store) SaveBookmarks(ctx context.Context, all []domain.Bookmark) error {
	rows := make([]bookmarkRow, len(all))
	ids := make([]string, len(all))
	for i, b := range all {
		rows[i] = toRow(b)
		ids[i] = b.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale *gorm.DB
		if len(ids) > 0 {
			stale = tx.Where("id NOT IN ?", ids)
		} else {
			stale = tx.Where("1 = 1")
		}
		if err := stale.Delete(&bookmarkRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete removed bookmarks: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(rows, upsertBatchSize).Error
		if err != nil {
			return fmt.Errorf("failed to upsert bookmarks: %w", err)
		}
		return nil
	})
	return err
}

// LoadSettings returns store.ErrNotFound when the singleton row is missing.
func (s *Store) LoadSettings(ctx context.Context) (domain.Settings, error) {
	var row settingsRow
	err := s.db.WithContext(ctx).First(&row, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	return domain.Settings{Theme: row.Theme, SiteTitle: row.SiteTitle, SiteIcon: row.SiteIcon}, nil
}

// SaveSettings upserts the singleton row.
func (s *Store) SaveSettings(ctx context.Context, value domain.Settings) error {
	row := settingsRow{
		ID:        settingsRowID,
		Theme:     value.Theme,
		SiteTitle: value.SiteTitle,
		SiteIcon:  value.SiteIcon,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// printfWriter routes gorm's log lines into the application logger.
type printfWriter struct {
	log logger.Logger
}

func (w printfWriter) Printf(format string, args ...interface{}) {
	w.log.Debugf(format, args...)
}

func newGormLogger(log logger.Logger, slow time.Duration) gormlogger.Interface {
	if log == nil {
		return gormlogger.Discard
	}
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return gormlogger.New(printfWriter{log: log}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
