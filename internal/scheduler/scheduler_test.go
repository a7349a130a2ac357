package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

type countingBackup struct {
	mu        sync.Mutex
	bookmarks [][]domain.Bookmark
	settings  []domain.Settings
}

func (c *countingBackup) Bookmarks(list []domain.Bookmark) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookmarks = append(c.bookmarks, list)
}

func (c *countingBackup) Settings(s domain.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = append(c.settings, s)
}

func (c *countingBackup) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bookmarks)
}

type failingState struct{}

func (failingState) List(context.Context) ([]domain.Bookmark, error) {
	return nil, errors.New("boom")
}

func (failingState) Settings(context.Context) (domain.Settings, error) {
	return domain.Settings{}, nil
}

func newService(t *testing.T) *service.Service {
	t.Helper()
	return service.New(memory.New(), nil, logger.NewNop())
}

func TestSnapshotPushesState(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, domain.BookmarkInput{Title: "A", URL: "a.example"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	backup := &countingBackup{}
	s := NewSnapshotter(svc, backup, logger.NewNop(), time.Hour, nil)
	if err := s.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if len(backup.bookmarks) != 1 || len(backup.bookmarks[0]) != 1 {
		t.Fatalf("backup bookmarks = %+v", backup.bookmarks)
	}
	if len(backup.settings) != 1 || backup.settings[0] != domain.DefaultSettings() {
		t.Errorf("backup settings = %+v", backup.settings)
	}
}

func TestSnapshotLoadError(t *testing.T) {
	backup := &countingBackup{}
	s := NewSnapshotter(failingState{}, backup, logger.NewNop(), time.Hour, nil)
	if err := s.Snapshot(context.Background()); err == nil {
		t.Fatal("Snapshot() should fail when the state cannot be loaded")
	}
	if backup.count() != 0 {
		t.Error("nothing should reach the backup after a load error")
	}
}

func TestSnapshotterStartAndTrigger(t *testing.T) {
	backup := &countingBackup{}
	trigger := make(chan struct{})
	s := NewSnapshotter(newService(t), backup, logger.NewNop(), time.Hour, trigger)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if backup.count() != 1 {
		t.Fatalf("initial snapshot count = %d, want 1", backup.count())
	}

	trigger <- struct{}{}
	deadline := time.Now().Add(2 * time.Second)
	for backup.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if backup.count() != 2 {
		t.Errorf("snapshot count after trigger = %d, want 2", backup.count())
	}

	s.Stop()
	s.Stop()
}

func TestSnapshotterTicks(t *testing.T) {
	backup := &countingBackup{}
	s := NewSnapshotter(newService(t), backup, logger.NewNop(), 10*time.Millisecond, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for backup.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if backup.count() < 3 {
		t.Errorf("snapshot count = %d, want at least 3", backup.count())
	}
}

func TestSnapshotterRejectsZeroInterval(t *testing.T) {
	s := NewSnapshotter(newService(t), &countingBackup{}, logger.NewNop(), 0, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() should reject a zero interval")
	}
	s.Stop()
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	content := `{"bookmarks":[{"title":"A","url":"a.example"},{"title":"","url":"b.example"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeedEmptyCollection(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	seeded, err := NewSeeder(svc, writeSeed(t), "", logger.NewNop()).Seed(ctx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if !seeded {
		t.Fatal("Seed() should import into an empty collection")
	}
	list, _ := svc.List(ctx)
	if len(list) != 1 || list[0].URL != "https://a.example" {
		t.Errorf("List() = %+v", list)
	}
}

func TestSeedSkipsPopulatedCollection(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, domain.BookmarkInput{Title: "X", URL: "x.example"}); err != nil {
		t.Fatal(err)
	}

	seeded, err := NewSeeder(svc, writeSeed(t), "", logger.NewNop()).Seed(ctx)
	if err != nil || seeded {
		t.Fatalf("Seed() = %v, %v; want false, nil", seeded, err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Errorf("List() has %d bookmarks, want 1", len(list))
	}
}

func TestSeedMissingFile(t *testing.T) {
	_, err := NewSeeder(newService(t), filepath.Join(t.TempDir(), "none.json"), "", logger.NewNop()).Seed(context.Background())
	if err == nil {
		t.Error("Seed() should fail for a missing file")
	}
}
