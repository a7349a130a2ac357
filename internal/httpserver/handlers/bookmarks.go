package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
)

const bodyLimit = 1 << 20 // 1 MiB

type reorderRequest struct {
	Order []string `json:"order"`
}

// PublicBookmarks lists visible bookmarks in display order.
func PublicBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Service.ListVisible(r.Context())
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}

// ListBookmarks lists every bookmark, hidden ones included.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Service.List(r.Context())
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if err := respond.Decode(w, r, bodyLimit, &in); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		created, err := d.Service.Create(r.Context(), in)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusCreated, created)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if err := respond.Decode(w, r, bodyLimit, &in); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		updated, err := d.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, updated)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReorderBookmarks expects {"order": [id, ...]} and returns the new list.
func ReorderBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := respond.Decode(w, r, bodyLimit, &req); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		list, err := d.Service.ReorderBookmarks(r.Context(), req.Order)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}
