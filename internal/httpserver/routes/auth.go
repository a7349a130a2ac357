package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.LoginBurst,
		RefillPerMin: d.LoginPerMin,
		MaxClients:   10_000,
		IdleTTL:      15 * time.Minute,
		TrustProxy:   d.TrustProxy,
	})

	r.With(limit).Post("/api/auth/login", handlers.Login(d))
	r.With(mw.RequireAuth(d.Auth, d.Logger)).Get("/api/auth/verify", handlers.Verify)
}
