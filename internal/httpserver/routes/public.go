package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { Register(registerPublic) }

func registerPublic(r chi.Router, d deps.Deps) {
	r.Get("/api/bookmarks", handlers.PublicBookmarks(d))
	r.Get("/api/categories", handlers.PublicCategories(d))
	r.Get("/api/settings", handlers.GetSettings(d))
}
