package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/shelf/internal/backup"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional rotated JSON log file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Storage
	StorageDriver  string        // json | postgres | sqlite | redis | memory
	DataFile       string        // json driver document
	DatabaseURL    string        // postgres DSN or sqlite path
	DBMaxOpenConns int           // gorm pool
	DBMaxIdleConns int           // gorm pool
	DBConnMaxLife  time.Duration // gorm pool
	DBSlowQuery    time.Duration // queries slower than this are logged

	// Backup mirror
	BackupDriver   string        // "" | redis | file
	BackupDir      string        // file driver directory
	BackupTimeout  time.Duration // bound for one backup write
	BackupInterval time.Duration // periodic full snapshot, 0 = disabled

	SeedFile string // optional homepage bookmarks.yaml imported when the collection is empty

	// Auth
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	// HTTP
	AllowedOrigins []string // CORS origins, "*" allows any
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict /healthz /readyz /metrics to these networks
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	LoginBurst     int      // login attempts allowed at once per client
	LoginPerMin    int      // login attempts refilled per minute per client
}

// Load reads the environment, after applying the optional .env file
// named by SHELF_ENV_FILE (default ".env"). Invalid values panic.
func Load() *Config {
	loadDotEnv(getenv("SHELF_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:      getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("SHELF_PRETTY_LOG", true),
		LogFile:       getenv("SHELF_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("SHELF_LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getenvInt("SHELF_LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getenvInt("SHELF_LOG_MAX_AGE_DAYS", 28),

		// Storage
		StorageDriver:  strings.ToLower(getenv("SHELF_STORAGE_DRIVER", store.DriverJSON)),
		DataFile:       getenv("SHELF_DATA_FILE", "./data/bookmarks.json"),
		DatabaseURL:    getenv("SHELF_DATABASE_URL", ""),
		DBMaxOpenConns: getenvInt("SHELF_DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getenvInt("SHELF_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:  mustDuration("SHELF_DB_CONN_MAX_LIFETIME", time.Hour),
		DBSlowQuery:    mustDuration("SHELF_DB_SLOW_QUERY", 200*time.Millisecond),

		// Backup
		BackupDriver:   strings.ToLower(getenv("SHELF_BACKUP_DRIVER", backup.DriverNone)),
		BackupDir:      getenv("SHELF_BACKUP_DIR", "./data/backup"),
		BackupTimeout:  mustDuration("SHELF_BACKUP_TIMEOUT", 10*time.Second),
		BackupInterval: mustDuration("SHELF_BACKUP_INTERVAL", 0),

		SeedFile: getenv("SHELF_SEED_FILE", ""),

		// Auth
		AdminPassword: getenv("SHELF_ADMIN_PASSWORD", ""),
		JWTSecret:     getenv("SHELF_JWT_SECRET", ""),
		TokenTTL:      mustDuration("SHELF_TOKEN_TTL", 24*time.Hour),

		// Redis settings
		RedisAddr:             getenv("SHELF_REDIS_ADDR", ""),
		RedisUser:             getenv("SHELF_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("SHELF_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SHELF_REDIS_DB", 0),
		RedisDT:               mustDuration("SHELF_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("SHELF_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("SHELF_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("SHELF_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("SHELF_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("SHELF_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("SHELF_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("SHELF_REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		AllowedOrigins: splitAndTrim(getenv("SHELF_ALLOWED_ORIGINS", "*")),
		AllowedHosts:   splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("SHELF_TRUST_PROXY", true),
		LoginBurst:     getenvInt("SHELF_LOGIN_BURST", 5),
		LoginPerMin:    getenvInt("SHELF_LOGIN_PER_MIN", 5),
	}

	cfg.validate()

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// NeedsRedis reports whether any component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.StorageDriver == store.DriverRedis || c.BackupDriver == backup.DriverRedis
}

// RequireSecrets panics unless the login password and token secret are set.
// Only the HTTP server needs them.
func (c *Config) RequireSecrets() {
	if c.AdminPassword == "" {
		panic("❌ FATAL: Required environment variable SHELF_ADMIN_PASSWORD is not set")
	}
	if c.JWTSecret == "" {
		panic("❌ FATAL: Required environment variable SHELF_JWT_SECRET is not set")
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	for _, field := range []*string{&cp.RedisPassword, &cp.AdminPassword, &cp.JWTSecret, &cp.DatabaseURL} {
		if *field != "" {
			*field = "***REDACTED***"
		}
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

func (c *Config) validate() {
	if !slices.Contains(store.Drivers, c.StorageDriver) {
		panic(fmt.Sprintf("❌ FATAL: Unknown SHELF_STORAGE_DRIVER %q (%s)", c.StorageDriver, strings.Join(store.Drivers, ", ")))
	}
	if !slices.Contains([]string{backup.DriverNone, backup.DriverRedis, backup.DriverFile}, c.BackupDriver) {
		panic(fmt.Sprintf("❌ FATAL: Unknown SHELF_BACKUP_DRIVER %q (redis, file or empty)", c.BackupDriver))
	}

	switch c.StorageDriver {
	case store.DriverPostgres:
		c.DatabaseURL = requireEnv("SHELF_DATABASE_URL")
	case store.DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "./data/shelf.db"
		}
	}

	if c.NeedsRedis() {
		c.RedisAddr = requireEnv("SHELF_REDIS_ADDR")
		// Validate Redis password configuration
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			panic("❌ FATAL: SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true")
		}
	}
}

// loadDotEnv applies a .env file without overriding variables already set.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Cannot read env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
