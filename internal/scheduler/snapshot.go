// Package scheduler runs the background jobs of the server: the periodic
// full backup snapshot and the startup seed import.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/service"
)

// State is the read side a snapshot needs.
type State interface {
	List(ctx context.Context) ([]domain.Bookmark, error)
	Settings(ctx context.Context) (domain.Settings, error)
}

// Snapshotter pushes the full state to the backup on a fixed interval.
type Snapshotter struct {
	state         State
	backup        service.Backup
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
	started       atomic.Bool
	done          chan struct{}
}

// NewSnapshotter creates a snapshotter. manualTrigger may be nil.
func NewSnapshotter(
	state State,
	backup service.Backup,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Snapshotter {
	return &Snapshotter{
		state:         state,
		backup:        backup,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		done:          make(chan struct{}),
	}
}

// Start takes a first snapshot, then one per interval until Stop or ctx
// is done.
func (s *Snapshotter) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("snapshot interval must be > 0, got %v", s.interval)
	}

	if err := s.Snapshot(ctx); err != nil {
		s.logger.Warn("initial snapshot failed", logger.Error(err))
	}

	s.started.Store(true)
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(ctx)
			case <-s.manualTrigger:
				s.logger.Info("manual snapshot triggered")
				s.run(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the loop and waits for a running snapshot to finish.
func (s *Snapshotter) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.started.Load() {
		<-s.done
	}
}

func (s *Snapshotter) run(ctx context.Context) {
	if err := s.Snapshot(ctx); err != nil {
		s.logger.Error("snapshot failed", logger.Error(err))
	}
}

// Snapshot loads bookmarks and settings and hands both to the backup.
func (s *Snapshotter) Snapshot(ctx context.Context) error {
	list, err := s.state.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}
	settings, err := s.state.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	s.backup.Bookmarks(list)
	s.backup.Settings(settings)

	s.logger.Debug("snapshot scheduled", logger.Int("bookmarks", len(list)))
	return nil
}
