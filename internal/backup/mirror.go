// Package backup replicates successful writes to a secondary destination.
// Writes run in the background and their failures are only logged.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

// Snapshot names, also used as metric labels.
const (
	NameBookmarks = "bookmarks"
	NameSettings  = "settings"
)

// DefaultTimeout bounds a single backup write when none is configured.
const DefaultTimeout = 10 * time.Second

// Mirror schedules fire-and-forget writes to a Target. Writes for one name
// run one at a time and only the latest pending snapshot is written, so an
// older snapshot never replaces a newer one. A Mirror without a target does
// nothing.
type Mirror struct {
	target  Target
	timeout time.Duration
	logger  logger.Logger

	mu     sync.Mutex
	closed bool
	lanes  map[string]*lane
	wg     sync.WaitGroup
}

// lane holds the snapshot waiting to be written for one name.
type lane struct {
	pending any
	queued  bool
	running bool
}

// NewMirror creates a mirror. target may be nil.
func NewMirror(target Target, timeout time.Duration, log logger.Logger) *Mirror {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Mirror{
		target:  target,
		timeout: timeout,
		logger:  log,
		lanes:   make(map[string]*lane),
	}
}

// Enabled reports whether a destination is configured.
func (m *Mirror) Enabled() bool {
	return m != nil && m.target != nil
}

// Bookmarks mirrors the full bookmark collection.
func (m *Mirror) Bookmarks(list []domain.Bookmark) {
	if !m.Enabled() {
		return
	}
	snapshot := slices.Clone(list)
	if snapshot == nil {
		snapshot = []domain.Bookmark{}
	}
	m.schedule(NameBookmarks, snapshot)
}

// Settings mirrors the settings singleton.
func (m *Mirror) Settings(s domain.Settings) {
	if !m.Enabled() {
		return
	}
	m.schedule(NameSettings, s)
}

// Close stops accepting new writes and waits for in-flight ones until ctx ends.
func (m *Mirror) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending backups not drained: %w", ctx.Err())
	}
}

func (m *Mirror) schedule(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.logger.Warn("backup mirror closed, dropping snapshot", logger.String("name", name))
		return
	}

	l := m.lanes[name]
	if l == nil {
		l = &lane{}
		m.lanes[name] = l
	}
	l.pending = value
	l.queued = true
	if l.running {
		return
	}
	l.running = true
	m.wg.Add(1)
	go m.run(name, l)
}

// run writes the lane's pending snapshot until none is left.
func (m *Mirror) run(name string, l *lane) {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		if !l.queued {
			l.running = false
			m.mu.Unlock()
			return
		}
		value := l.pending
		l.pending = nil
		l.queued = false
		m.mu.Unlock()

		err := m.write(name, value)
		metrics.BackupWrites.WithLabelValues(name, metrics.Result(err)).Inc()
		if err != nil {
			m.logger.Error("backup write failed",
				logger.String("name", name),
				logger.String("target", m.target.String()),
				logger.Error(err))
			continue
		}
		m.logger.Debug("backup written",
			logger.String("name", name),
			logger.String("target", m.target.String()))
	}
}

func (m *Mirror) write(name string, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backup panicked: %v", r)
		}
	}()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.target.Put(ctx, name, data)
}
