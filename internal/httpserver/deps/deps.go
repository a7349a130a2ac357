package deps

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

type Deps struct {
	Logger         logger.Logger
	Service        *service.Service    // bookmark and settings operations
	Auth           *auth.Authenticator // admin login and token checks
	Backend        store.Backend       // pinged by /readyz
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedOrigins []string // CORS origins
	AllowedCIDRS   []string // IPs allowed to access healthz/readyz/metrics endpoints
	TrustProxy     bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	LoginBurst     int      // login attempts allowed at once per client
	LoginPerMin    int      // login attempts refilled per minute per client

	SnapshotTrigger chan struct{} // manual backup snapshot, nil when snapshots are off
}
