package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

const testPassword = "pw"

type harness struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil)
}

func newHarnessWith(t *testing.T, configure func(*deps.Deps)) *harness {
	t.Helper()
	log := logger.NewNop()
	backend := memory.New()
	d := deps.Deps{
		Logger:         log,
		Service:        service.New(backend, nil, log),
		Auth:           auth.New(testPassword, "test-secret", time.Hour),
		Backend:        backend,
		StartTime:      time.Now(),
		Version:        "test",
		AllowedOrigins: []string{"*"},
		LoginBurst:     100,
		LoginPerMin:    100,
	}
	if configure != nil {
		configure(&d)
	}
	return &harness{t: t, handler: NewRouter(d, nil)}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login() {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/auth/login", map[string]string{"password": testPassword})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var tok auth.Token
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(h.t, tok.Token)
	h.token = tok.Token
}

func (h *harness) create(title, url, category string, visible bool) domain.Bookmark {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/admin/bookmarks", map[string]any{
		"title": title, "url": url, "category": category, "visible": visible,
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	var b domain.Bookmark
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/bookmarks"},
		{http.MethodPost, "/api/admin/bookmarks"},
		{http.MethodPut, "/api/admin/bookmarks/x"},
		{http.MethodDelete, "/api/admin/bookmarks/x"},
		{http.MethodPost, "/api/admin/bookmarks/reorder"},
		{http.MethodPost, "/api/admin/categories/reorder"},
		{http.MethodPut, "/api/admin/settings"},
		{http.MethodGet, "/api/admin/export"},
		{http.MethodPost, "/api/admin/import"},
		{http.MethodPost, "/api/admin/backup/snapshot"},
		{http.MethodGet, "/api/auth/verify"},
	} {
		rec := h.do(tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/auth/login", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.login()
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodGet, "/api/auth/verify", nil).Code)
}

func TestBookmarkLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	a := h.create("A", "a.example", "Dev", true)
	assert.Equal(t, "https://a.example", a.URL)
	assert.Equal(t, 0, a.Order)
	b := h.create("B", "https://b.example", "", false)
	assert.Equal(t, 1, b.Order)

	public := decode[[]domain.Bookmark](t, h.do(http.MethodGet, "/api/bookmarks", nil))
	require.Len(t, public, 1)
	assert.Equal(t, a.ID, public[0].ID)

	all := decode[[]domain.Bookmark](t, h.do(http.MethodGet, "/api/admin/bookmarks", nil))
	assert.Len(t, all, 2)

	rec := h.do(http.MethodPut, "/api/admin/bookmarks/"+b.ID, map[string]any{
		"title": "B2", "url": "b.example", "visible": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Bookmark](t, rec)
	assert.Equal(t, "B2", updated.Title)
	assert.Equal(t, 1, updated.Order)

	rec = h.do(http.MethodPut, "/api/admin/bookmarks/missing", map[string]any{"title": "x", "url": "x.example"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, "/api/admin/bookmarks/reorder", map[string]any{"order": []string{b.ID, a.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	reordered := decode[[]domain.Bookmark](t, rec)
	require.Len(t, reordered, 2)
	assert.Equal(t, b.ID, reordered[0].ID)
	assert.Equal(t, 0, reordered[0].Order)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/admin/bookmarks/"+a.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/admin/bookmarks/"+a.ID, nil).Code)
}

func TestValidationErrorNamesField(t *testing.T) {
	h := newHarness(t)
	h.login()

	rec := h.do(http.MethodPost, "/api/admin/bookmarks", map[string]any{"title": "  ", "url": "x.example"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[respond.ErrorBody](t, rec)
	assert.Equal(t, "title", body.Field)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/bookmarks", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+h.token)
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body", decode[respond.ErrorBody](t, rec).Field)
}

func TestCategoriesAndReorder(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.create("A", "a.example", "Dev", true)
	h.create("B", "b.example", "", true)
	h.create("C", "c.example", "Dev", true)

	rec := h.do(http.MethodPost, "/api/admin/categories/reorder", map[string]any{"order": []string{"", "Dev"}})
	require.Equal(t, http.StatusOK, rec.Code)

	groups := decode[[]domain.CategoryGroup](t, h.do(http.MethodGet, "/api/categories", nil))
	require.Len(t, groups, 2)
	assert.Equal(t, "", groups[0].Category)
	assert.Equal(t, "Dev", groups[1].Category)
	require.Len(t, groups[1].Bookmarks, 2)
	assert.Equal(t, "A", groups[1].Bookmarks[0].Title)
}

func TestSettingsRoutes(t *testing.T) {
	h := newHarness(t)

	got := decode[domain.Settings](t, h.do(http.MethodGet, "/api/settings", nil))
	assert.Equal(t, domain.DefaultSettings(), got)

	h.login()
	rec := h.do(http.MethodPut, "/api/admin/settings", map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", decode[domain.Settings](t, rec).Theme)

	rec = h.do(http.MethodPut, "/api/admin/settings", map[string]any{"theme": "neon"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "theme", decode[respond.ErrorBody](t, rec).Field)

	got = decode[domain.Settings](t, h.do(http.MethodGet, "/api/settings", nil))
	assert.Equal(t, "dark", got.Theme)
}

func TestExportImport(t *testing.T) {
	src := newHarness(t)
	src.login()
	src.create("A", "a.example", "Dev", true)
	src.create("B", "b.example", "", false)

	rec := src.do(http.MethodGet, "/api/admin/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shelf-export.json")
	exported := decode[service.ExportPayload](t, rec)
	require.Len(t, exported.Bookmarks, 2)

	dst := newHarness(t)
	dst.login()
	dst.create("Old", "old.example", "", true)

	rec = dst.do(http.MethodPost, "/api/admin/import", map[string]any{
		"bookmarks": exported.Bookmarks,
		"overwrite": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[service.ImportResult](t, rec)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	all := decode[[]domain.Bookmark](t, dst.do(http.MethodGet, "/api/admin/bookmarks", nil))
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title)
	assert.False(t, all[1].Visible)
}

func TestPreflightAndFallbacks(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodOptions, "/api/admin/bookmarks", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode[respond.ErrorBody](t, rec).Error)
}

func TestProbesAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = h.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":true`)

	rec = h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shelf_http_requests_total")
}

func TestSearchRoutes(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.create("GitHub", "github.com", "Dev", true)
	h.create("GitLab", "gitlab.com", "Dev", false)

	public := decode[[]domain.SearchHit](t, h.do(http.MethodGet, "/api/search?q=git", nil))
	require.Len(t, public, 1)
	assert.Equal(t, "GitHub", public[0].Bookmark.Title)

	all := decode[[]domain.SearchHit](t, h.do(http.MethodGet, "/api/admin/search?q=git&limit=5", nil))
	assert.Len(t, all, 2)

	rec := h.do(http.MethodGet, "/api/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "q", decode[respond.ErrorBody](t, rec).Field)

	rec = h.do(http.MethodGet, "/api/search?q=git&limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnapshotTrigger(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t)
		h.login()
		rec := h.do(http.MethodPost, "/api/admin/backup/snapshot", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("queued once", func(t *testing.T) {
		trigger := make(chan struct{}, 1)
		h := newHarnessWith(t, func(d *deps.Deps) { d.SnapshotTrigger = trigger })
		h.login()

		rec := h.do(http.MethodPost, "/api/admin/backup/snapshot", nil)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		assert.Len(t, trigger, 1)

		rec = h.do(http.MethodPost, "/api/admin/backup/snapshot", nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		<-trigger
		rec = h.do(http.MethodPost, "/api/admin/backup/snapshot", nil)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}
