package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
	"github.com/MrSnakeDoc/shelf/internal/service"
)

const importLimit = 16 << 20 // 16 MiB

func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := d.Service.Export(r.Context())
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, payload)
	}
}

// Import answers 200 with the per-item report even when some items failed.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload service.ImportPayload
		if err := respond.Decode(w, r, importLimit, &payload); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		result, err := d.Service.Import(r.Context(), payload)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, result)
	}
}
