package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/broadcast"
	"github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/telemetry"
	"github.com/ghuser/auctionhouse/pkg/workflows"
	"github.com/ghuser/auctionhouse/services/auction/application/background"
	auctionSvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	if cfg.StoreBackend != config.StorePostgres {
		// Memory-mode events never leave the API process.
		log.Error("the standalone worker requires STORE_BACKEND=postgres; use EMBEDDED_WORKER instead")
		os.Exit(1)
	}

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	var redisClient *cache.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
	}

	relay, err := newRelay(cfg, redisClient, log)
	if err != nil {
		log.Error("failed to setup broadcast relay", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer relay.Close() //nolint:errcheck

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		Relay:          relay,
	}

	svcs, err := auctionSvcs.New(ctx, appConfig)
	if err != nil {
		log.Error("failed to wire auction services", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	stop, err := background.Start(runCtx, appConfig, svcs)
	if err != nil {
		cancelRun()
		log.Error("failed to start worker", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelRun()
	stop()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// newRelay selects the relay that carries updates to the API processes.
// A local relay has no reader here, so updates would be dropped.
func newRelay(cfg *config.Config, redisClient *cache.RedisClient, log logger.Logger) (broadcast.Relay, error) {
	switch cfg.BroadcastBackend {
	case config.BroadcastRedis:
		if redisClient == nil {
			return nil, errors.New("BROADCAST_BACKEND=redis requires REDIS_URL")
		}
		return broadcast.NewRedisRelay(redisClient.Client(), log), nil
	case config.BroadcastNATS:
		return broadcast.NewNATSRelay(cfg.NATSURL, cfg.ServiceName+"-worker", log)
	default:
		log.Warn("local broadcast relay in the standalone worker; live updates will not reach API watchers")
		return broadcast.NewLocalRelay(), nil
	}
}
