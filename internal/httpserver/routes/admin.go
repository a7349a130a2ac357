package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(d.Auth, d.Logger))

		r.Get("/api/admin/bookmarks", handlers.ListBookmarks(d))
		r.Post("/api/admin/bookmarks", handlers.CreateBookmark(d))
		r.Post("/api/admin/bookmarks/reorder", handlers.ReorderBookmarks(d))
		r.Put("/api/admin/bookmarks/{id}", handlers.UpdateBookmark(d))
		r.Delete("/api/admin/bookmarks/{id}", handlers.DeleteBookmark(d))

		r.Post("/api/admin/categories/reorder", handlers.ReorderCategories(d))
		r.Put("/api/admin/settings", handlers.UpdateSettings(d))

		r.Post("/api/admin/backup/snapshot", handlers.TriggerSnapshot(d))
	})
}
