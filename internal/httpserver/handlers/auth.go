package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for a token.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := respond.Decode(w, r, 4<<10, &req); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		tok, err := d.Auth.Login(req.Password)
		if err != nil {
			d.Logger.Warn("failed login attempt",
				logger.String("ip", utils.ClientIP(r, d.TrustProxy)))
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, tok)
	}
}

// Verify is reached only with a valid token.
func Verify(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
