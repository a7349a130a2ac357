package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
)

// PublicCategories groups visible bookmarks by category.
func PublicCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := d.Service.Categories(r.Context(), true)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, groups)
	}
}

// ReorderCategories expects {"order": [name, ...]}; "" names the
// uncategorized group.
func ReorderCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := respond.Decode(w, r, bodyLimit, &req); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		list, err := d.Service.ReorderCategories(r.Context(), req.Order)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}
