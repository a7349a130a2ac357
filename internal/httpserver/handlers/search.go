package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Search answers GET ?q=...&limit=N with ranked hits. The public route
// only sees visible bookmarks.
func Search(d deps.Deps, visibleOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			respond.Error(w, d.Logger, &domain.ValidationError{Field: "q", Message: "is required"})
			return
		}

		limit := defaultSearchLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				respond.Error(w, d.Logger, &domain.ValidationError{Field: "limit", Message: "must be a positive integer"})
				return
			}
			limit = min(n, maxSearchLimit)
		}

		hits, err := d.Service.Search(r.Context(), query, visibleOnly, limit)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, hits)
	}
}
