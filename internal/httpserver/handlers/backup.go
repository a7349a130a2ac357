package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/respond"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// TriggerSnapshot asks the snapshotter for an immediate full backup.
func TriggerSnapshot(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.SnapshotTrigger == nil {
			respond.Message(w, http.StatusConflict, "backup snapshots are disabled")
			return
		}

		select {
		case d.SnapshotTrigger <- struct{}{}:
			d.Logger.Info("manual snapshot requested",
				logger.String("subject", mw.Subject(r.Context())),
				logger.String("remote_ip", r.RemoteAddr))
			respond.Message(w, http.StatusAccepted, "snapshot triggered")
		default:
			respond.Message(w, http.StatusTooManyRequests, "snapshot already pending")
		}
	}
}
