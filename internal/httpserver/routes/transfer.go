package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() {
	Register(registerExport, middleware.SetHeader("Content-Disposition", `attachment; filename="shelf-export.json"`))
	Register(registerImport)
}

func registerExport(r chi.Router, d deps.Deps) {
	r.With(mw.RequireAuth(d.Auth, d.Logger)).Get("/api/admin/export", handlers.Export(d))
}

func registerImport(r chi.Router, d deps.Deps) {
	r.With(mw.RequireAuth(d.Auth, d.Logger)).Post("/api/admin/import", handlers.Import(d))
}
