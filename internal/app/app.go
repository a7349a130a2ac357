package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/backup"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/jsonfile"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	sqlstore "github.com/MrSnakeDoc/shelf/internal/store/sql"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

const schemaTimeout = 30 * time.Second

// App owns the storage backend, the backup mirror and the service. The
// HTTP server is only built by Serve.
type App struct {
	cfg         *config.Config
	logger      logger.Logger
	backend     store.Backend
	redisClient *goredis.Client
	mirror      *backup.Mirror
	service     *service.Service
}

// New opens the configured backend, prepares its schema and wires the
// backup mirror into the service.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	if cfg.NeedsRedis() {
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
	}

	backend, err := a.openBackend()
	if err != nil {
		a.closeRedis()
		return nil, err
	}
	a.backend = backend

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err := backend.EnsureSchema(ctx); err != nil {
		_ = utils.CloseLogged(backend, "storage", loggerClient)
		a.closeRedis()
		return nil, fmt.Errorf("failed to prepare %s storage: %w", cfg.StorageDriver, err)
	}

	a.mirror = backup.NewMirror(a.backupTarget(), cfg.BackupTimeout, loggerClient)
	a.service = service.New(backend, a.mirror, loggerClient)

	loggerClient.Info("storage ready",
		logger.String("driver", cfg.StorageDriver),
		logger.Bool("backup", a.mirror.Enabled()))
	return a, nil
}

// Service exposes the record service to the CLI commands.
func (a *App) Service() *service.Service { return a.service }

func (a *App) openBackend() (store.Backend, error) {
	switch a.cfg.StorageDriver {
	case store.DriverJSON:
		return jsonfile.New(a.cfg.DataFile), nil
	case store.DriverPostgres, store.DriverSQLite:
		return sqlstore.Open(sqlstore.Options{
			Driver:          a.cfg.StorageDriver,
			DSN:             a.cfg.DatabaseURL,
			MaxOpenConns:    a.cfg.DBMaxOpenConns,
			MaxIdleConns:    a.cfg.DBMaxIdleConns,
			ConnMaxLifetime: a.cfg.DBConnMaxLife,
			SlowThreshold:   a.cfg.DBSlowQuery,
		}, a.logger)
	case store.DriverRedis:
		return redisstore.NewStore(a.redisClient), nil
	case store.DriverMemory:
		a.logger.Warn("memory storage selected, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.StorageDriver)
	}
}

func (a *App) backupTarget() backup.Target {
	switch a.cfg.BackupDriver {
	case backup.DriverRedis:
		return backup.NewRedisTarget(a.redisClient)
	case backup.DriverFile:
		return backup.NewFileTarget(a.cfg.BackupDir)
	default:
		return nil
	}
}

// Close drains pending backups, then releases the backend and Redis.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.mirror.Close(ctx); err != nil {
		a.logger.Warn("backup mirror not drained", logger.Error(err))
		errs = append(errs, err)
	}
	if err := utils.CloseLogged(a.backend, "storage", a.logger); err != nil {
		errs = append(errs, err)
	}
	if err := a.closeRedis(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeRedis() error {
	if a.redisClient == nil {
		return nil
	}
	return utils.CloseLogged(a.redisClient, "redis", a.logger)
}

// Serve runs the HTTP server and the background jobs until SIGINT/SIGTERM,
// then shuts everything down within ShutdownTimeout.
func (a *App) Serve() error {
	a.cfg.RequireSecrets()

	a.logger.Infof("🚀 Starting Shelf %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Shelf %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.SeedFile != "" {
		seeder := scheduler.NewSeeder(a.service, a.cfg.SeedFile, "", a.logger)
		if _, err := seeder.Seed(ctx); err != nil {
			a.logger.Error("seed import failed", logger.Error(err))
		}
	}

	var snapshotter *scheduler.Snapshotter
	var snapshotTrigger chan struct{}
	if a.mirror.Enabled() && a.cfg.BackupInterval > 0 {
		snapshotTrigger = make(chan struct{}, 1)
		snapshotter = scheduler.NewSnapshotter(a.service, a.mirror, a.logger, a.cfg.BackupInterval, snapshotTrigger)
		if err := snapshotter.Start(ctx); err != nil {
			return fmt.Errorf("failed to start snapshotter: %w", err)
		}
		a.logger.Info("backup snapshotter started",
			logger.Duration("interval", a.cfg.BackupInterval))
	}

	d := deps.Deps{
		Logger:         a.logger,
		Service:        a.service,
		Auth:           auth.New(a.cfg.AdminPassword, a.cfg.JWTSecret, a.cfg.TokenTTL),
		Backend:        a.backend,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedOrigins: a.cfg.AllowedOrigins,
		AllowedCIDRS:   a.cfg.AllowedCIDRS,
		TrustProxy:     a.cfg.TrustProxy,
		LoginBurst:     a.cfg.LoginBurst,
		LoginPerMin:    a.cfg.LoginPerMin,

		SnapshotTrigger: snapshotTrigger,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if snapshotter != nil {
		snapshotter.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		a.logger.Error("failed to stop server", logger.Error(err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		a.logger.Warn("shutdown incomplete", logger.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Shelf stopped cleanly")
	return nil
}
