package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/jsonfile"
)

type spyBackup struct {
	mu        sync.Mutex
	bookmarks int
	settings  int
	last      []domain.Bookmark
}

func (b *spyBackup) Bookmarks(list []domain.Bookmark) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookmarks++
	b.last = slices.Clone(list)
}

func (b *spyBackup) Settings(domain.Settings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings++
}

type fixture struct {
	svc    *Service
	path   string
	backup *spyBackup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bookmarks.json")
	backend := jsonfile.New(path)
	if err := backend.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ids := 0
	spy := &spyBackup{}
	svc := New(backend, spy, logger.NewNop(),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		}),
	)
	return &fixture{svc: svc, path: path, backup: spy}
}

func (f *fixture) create(t *testing.T, title, url, category string) domain.Bookmark {
	t.Helper()
	b, err := f.svc.Create(context.Background(), domain.BookmarkInput{Title: title, URL: url, Category: category})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return b
}

func (f *fixture) raw(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	return data
}

func ids(list []domain.Bookmark) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}

func orders(list []domain.Bookmark) []int {
	out := make([]int, len(list))
	for i, b := range list {
		out[i] = b.Order
	}
	return out
}

func TestCreateNormalizesURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "example.com", want: "https://example.com"},
		{url: "https://x.com", want: "https://x.com"},
		{url: "  http://plain.example  ", want: "http://plain.example"},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			b := f.create(t, "T", tt.url, "")
			got, err := f.svc.Get(context.Background(), b.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.URL != tt.want {
				t.Errorf("stored URL = %q, want %q", got.URL, tt.want)
			}
		})
	}
}

func TestCreateAssignsAppendOrder(t *testing.T) {
	f := newFixture(t)

	a := f.create(t, "A", "a.example", "")
	b := f.create(t, "B", "b.example", " Work ")

	if a.Order != 0 || b.Order != 1 {
		t.Errorf("orders = %d, %d, want 0, 1", a.Order, b.Order)
	}
	if b.Category != "Work" {
		t.Errorf("category = %q, want trimmed", b.Category)
	}
	if !a.Visible {
		t.Error("visible should default to true")
	}
	if a.CreatedAt.IsZero() || !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", a.CreatedAt, a.UpdatedAt)
	}
	if f.backup.bookmarks != 2 {
		t.Errorf("backups = %d, want 2", f.backup.bookmarks)
	}
}

func TestCreateValidationLeavesCollection(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A", "a.example", "")
	before := f.raw(t)

	tests := []struct {
		name  string
		input domain.BookmarkInput
		field string
	}{
		{name: "empty title", input: domain.BookmarkInput{Title: "  ", URL: "x.com"}, field: "title"},
		{name: "empty url", input: domain.BookmarkInput{Title: "X"}, field: "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.input)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
			if string(f.raw(t)) != string(before) {
				t.Error("collection changed after failed create")
			}
		})
	}
	if f.backup.bookmarks != 1 {
		t.Errorf("backups = %d, want 1", f.backup.bookmarks)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A", "a.example", "")
	b := f.create(t, "B", "b.example", "")

	hidden := false
	got, err := f.svc.Update(context.Background(), b.ID, domain.BookmarkInput{
		Title:       "B2",
		URL:         "b2.example",
		Category:    "News",
		Description: "  daily ",
		Visible:     &hidden,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Title != "B2" || got.URL != "https://b2.example" || got.Category != "News" || got.Description != "daily" || got.Visible {
		t.Errorf("Update() = %+v", got)
	}
	if got.Order != b.Order {
		t.Errorf("order changed: %d -> %d", b.Order, got.Order)
	}
	if !got.CreatedAt.Equal(b.CreatedAt) || !got.UpdatedAt.After(b.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	_, err = f.svc.Update(context.Background(), "missing", domain.BookmarkInput{Title: "x", URL: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUnknownLeavesFileUntouched(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A", "a.example", "")
	f.create(t, "B", "b.example", "x")
	before := f.raw(t)

	err := f.svc.Delete(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	if string(f.raw(t)) != string(before) {
		t.Error("data file changed after failed delete")
	}
	if f.backup.bookmarks != 2 {
		t.Errorf("backups = %d, want 2", f.backup.bookmarks)
	}
}

func TestDeleteKeepsGaps(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "A", "a.example", "")
	b := f.create(t, "B", "b.example", "")
	c := f.create(t, "C", "c.example", "")

	if err := f.svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(ids(list), []string{a.ID, c.ID}) {
		t.Errorf("ids = %v", ids(list))
	}
	if !slices.Equal(orders(list), []int{0, 2}) {
		t.Errorf("orders = %v, want [0 2]", orders(list))
	}

	// next create still appends after the highest order
	d := f.create(t, "D", "d.example", "")
	if d.Order != 3 {
		t.Errorf("order = %d, want 3", d.Order)
	}
}

func TestReorderBookmarksThenList(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "A", "a.example", "")
	b := f.create(t, "B", "b.example", "")
	c := f.create(t, "C", "c.example", "")
	d := f.create(t, "D", "d.example", "")

	ctx := context.Background()
	requested := []string{c.ID, "ghost", a.ID, c.ID}
	if _, err := f.svc.ReorderBookmarks(ctx, requested); err != nil {
		t.Fatalf("ReorderBookmarks() error = %v", err)
	}
	first, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{c.ID, a.ID, b.ID, d.ID}
	if !slices.Equal(ids(first), want) {
		t.Errorf("ids = %v, want %v", ids(first), want)
	}
	if !slices.Equal(orders(first), []int{0, 1, 2, 3}) {
		t.Errorf("orders = %v", orders(first))
	}

	if _, err := f.svc.ReorderBookmarks(ctx, requested); err != nil {
		t.Fatalf("ReorderBookmarks() error = %v", err)
	}
	second, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(ids(first), ids(second)) || !slices.Equal(orders(first), orders(second)) {
		t.Errorf("second reorder changed the list: %v -> %v", ids(first), ids(second))
	}
}

func TestReorderCategoriesKeepsIntraOrder(t *testing.T) {
	f := newFixture(t)
	a1 := f.create(t, "A1", "a1.example", "A")
	b1 := f.create(t, "B1", "b1.example", "B")
	u1 := f.create(t, "U1", "u1.example", "")
	a2 := f.create(t, "A2", "a2.example", "A")
	b2 := f.create(t, "B2", "b2.example", " B ")

	list, err := f.svc.ReorderCategories(context.Background(), []string{"B", "  ", "missing"})
	if err != nil {
		t.Fatalf("ReorderCategories() error = %v", err)
	}
	want := []string{b1.ID, b2.ID, u1.ID, a1.ID, a2.ID}
	if !slices.Equal(ids(list), want) {
		t.Errorf("ids = %v, want %v", ids(list), want)
	}
	if !slices.Equal(orders(list), []int{0, 1, 2, 3, 4}) {
		t.Errorf("orders = %v", orders(list))
	}
	if f.backup.bookmarks != 6 || len(f.backup.last) != 5 {
		t.Errorf("backup calls = %d, last size = %d", f.backup.bookmarks, len(f.backup.last))
	}
}

func TestListVisibleAndCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := false

	f.create(t, "A", "a.example", "Work")
	if _, err := f.svc.Create(ctx, domain.BookmarkInput{Title: "H", URL: "h.example", Category: "Secret", Visible: &hidden}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f.create(t, "B", "b.example", "")

	visible, err := f.svc.ListVisible(ctx)
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(visible) != 2 {
		t.Errorf("ListVisible() returned %d bookmarks, want 2", len(visible))
	}

	public, err := f.svc.Categories(ctx, true)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(public) != 2 || public[0].Category != "Work" || public[1].Category != domain.Uncategorized {
		t.Errorf("public categories = %+v", public)
	}

	all, err := f.svc.Categories(ctx, false)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all categories = %d, want 3", len(all))
	}
}

func TestSettingsDefaultsOnFirstRead(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if got != domain.DefaultSettings() {
		t.Errorf("Settings() = %+v, want defaults", got)
	}

	backend := jsonfile.New(f.path)
	stored, err := backend.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
	if stored != got {
		t.Errorf("stored = %+v, want %+v", stored, got)
	}
}

func TestSettingsUnknownThemeReadsAsDefault(t *testing.T) {
	f := newFixture(t)
	backend := jsonfile.New(f.path)
	if err := backend.SaveSettings(context.Background(), domain.Settings{Theme: "neon", SiteTitle: "Mine"}); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	got, err := f.svc.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if got.Theme != domain.DefaultTheme || got.SiteTitle != "Mine" {
		t.Errorf("Settings() = %+v", got)
	}
}

func TestUpdateSettingsThemeTwiceKeepsOtherFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title, icon, dark := "Home", "https://icon.example/i.png", "dark"

	if _, err := f.svc.UpdateSettings(ctx, domain.SettingsPatch{SiteTitle: &title, SiteIcon: &icon}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	for range 2 {
		if _, err := f.svc.UpdateSettings(ctx, domain.SettingsPatch{Theme: &dark}); err != nil {
			t.Fatalf("UpdateSettings() error = %v", err)
		}
	}

	got, err := f.svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	want := domain.Settings{Theme: "dark", SiteTitle: title, SiteIcon: icon}
	if got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
	if f.backup.settings != 3 {
		t.Errorf("settings backups = %d, want 3", f.backup.settings)
	}
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	neon := "neon"

	_, err := f.svc.UpdateSettings(context.Background(), domain.SettingsPatch{Theme: &neon})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "theme" {
		t.Fatalf("UpdateSettings() error = %v, want theme ValidationError", err)
	}
	if f.backup.settings != 0 {
		t.Errorf("settings backups = %d, want 0", f.backup.settings)
	}
}

type failingBackend struct {
	store.Backend
	err error
}

func (b failingBackend) LoadBookmarks(context.Context) ([]domain.Bookmark, error) {
	return nil, b.err
}

func (b failingBackend) LoadSettings(context.Context) (domain.Settings, error) {
	return domain.Settings{}, b.err
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	cause := errors.New("disk on fire")
	svc := New(failingBackend{err: cause}, nil, logger.NewNop())
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["list"] = svc.List(ctx)
	_, checks["create"] = svc.Create(ctx, domain.BookmarkInput{Title: "x", URL: "x"})
	checks["delete"] = svc.Delete(ctx, "x")
	_, checks["settings"] = svc.Settings(ctx)

	for name, err := range checks {
		var serr *StorageError
		if !errors.As(err, &serr) {
			t.Errorf("%s: error = %v, want StorageError", name, err)
			continue
		}
		if !errors.Is(err, cause) {
			t.Errorf("%s: error does not wrap the cause", name)
		}
	}
}

func TestSearchVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := false
	f.create(t, "Grafana", "grafana.lan", "")
	if _, err := f.svc.Create(ctx, domain.BookmarkInput{Title: "Grafana staging", URL: "staging.grafana.lan", Visible: &hidden}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	public, err := f.svc.Search(ctx, "grafana", true, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(public) != 1 || public[0].Bookmark.Title != "Grafana" {
		t.Errorf("public Search() = %+v", public)
	}

	all, err := f.svc.Search(ctx, "grafana", false, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin Search() returned %d hits, want 2", len(all))
	}
}
