package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garrettladley/wext/internal/migrations/postgres"
	xredis "github.com/garrettladley/wext/internal/redis"
	"github.com/garrettladley/wext/internal/server"
	"github.com/garrettladley/wext/internal/service/beacon"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/storage"
	"github.com/garrettladley/wext/internal/xslog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	keyPort        = "port"
	keyStorage     = "storage"
	keyGracePeriod = "grace_period"
	keyRetention   = "retention"

	retentionInterval = time.Hour
	shutdownTimeout   = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := server.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Storage == server.StorageRedis {
		redisClient, err = xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL})
		if err != nil {
			return fmt.Errorf("failed to initialize redis client: %w", err)
		}
	}

	backend := initBackend(ctx, cfg, redisClient, logger)
	defer func() {
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close backend", xslog.Error(err))
		}
	}()

	feed := initPanelFeed(ctx, redisClient, logger)

	beaconStore, closeBeacons, err := initBeaconStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize beacon store: %w", err)
	}
	defer closeBeacons()

	// Services
	panelService := panelsvc.NewController(backend, feed, cfg.SessionTTL)
	beaconService := beacon.NewIntake(beaconStore)

	shutdownCoordinator := server.NewShutdownCoordinator(cfg.ShutdownGrace)

	router := server.NewRouter(server.RouterDeps{
		Logger:  logger,
		Panel:   panelService,
		Beacons: beaconService,
		Limiter: backend,
		Pinger:  backend,
		Tracker: shutdownCoordinator,

		GzipMinSize: cfg.GzipMinSize,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // disabled for streams; use SetWriteDeadline per-request
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return shutdownCoordinator.BaseContext()
		},
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			slog.String(keyStorage, string(cfg.Storage)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.InfoContext(ctx, "starting beacon retention", slog.Duration(keyRetention, cfg.BeaconRetention))
		return beacon.RunRetention(gctx, beaconService, cfg.BeaconRetention, retentionInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

		// cancel base context and wait for open streams to say goodbye
		shutdownCoordinator.InitiateShutdown()
		logger.InfoContext(ctx, "stream grace period complete, shutting down server",
			slog.Duration(keyGracePeriod, cfg.ShutdownGrace))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

func initBackend(ctx context.Context, cfg server.Config, redisClient *redis.Client, logger *slog.Logger) storage.Backend {
	if redisClient == nil {
		logger.InfoContext(ctx, "initializing in-memory backend")
		return storage.NewMemoryBackend(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	}

	logger.InfoContext(ctx, "initializing Redis backend")
	return storage.NewRedisBackend(storage.RedisConfig{
		Client:     redisClient,
		RateLimit:  cfg.RateLimit.Burst,
		RateWindow: time.Duration(float64(cfg.RateLimit.Burst) / cfg.RateLimit.PerSecond * float64(time.Second)),
	})
}

func initPanelFeed(ctx context.Context, redisClient *redis.Client, logger *slog.Logger) storage.PanelFeed {
	if redisClient == nil {
		logger.InfoContext(ctx, "initializing in-process panel feed")
		return storage.NewMemoryPanelFeed()
	}

	logger.InfoContext(ctx, "initializing panel feed (Redis pub/sub)")
	return storage.NewRedisPanelFeed(redisClient)
}

func initBeaconStore(ctx context.Context, cfg server.Config, logger *slog.Logger) (storage.BeaconStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.InfoContext(ctx, "initializing in-memory beacon log")
		return storage.NewMemoryBeaconStore(storage.DefaultBeaconCapacity), func() {}, nil
	}

	logger.InfoContext(ctx, "initializing PostgreSQL beacon log")

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	if err := postgres.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return storage.NewPostgresBeaconStore(pool), pool.Close, nil
}
