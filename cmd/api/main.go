package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/auctionhouse/docs/swagger"
	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/pkg/broadcast"
	"github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/telemetry"
	"github.com/ghuser/auctionhouse/pkg/workflows"
	auctionApi "github.com/ghuser/auctionhouse/services/auction/application/api"
	"github.com/ghuser/auctionhouse/services/auction/application/background"
	auctionSvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// @title					Auctionhouse API
// @version				1.0
// @description			Online auction bidding: auctions, bids, lifecycle and live updates.
// @termsOfService			http://swagger.io/terms/
// @contact.name			API Support
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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
	errhttp.MaskInternalErrors(cfg.Environment == config.EnvProduction)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	// runCtx scopes every background goroutine of this process.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	health := httpx.HealthChecks{}

	var pool *database.Database
	var eventBus *events.EventBus
	if cfg.StoreBackend == config.StorePostgres {
		pool, err = database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
		}
		defer pool.Close()
		health.Database = pool
		log.Info("database pool connected")

		eventBus, err = events.NewEventBusWithForwarder(cfg, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		if err := eventBus.StartForwarder(runCtx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	} else {
		log.Warn("running with the in-memory store; data is lost on restart")
		eventBus = events.NewInMemoryEventBus(log)
	}
	defer eventBus.Close() //nolint:errcheck
	health.EventBus = eventBus

	var redisClient *cache.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer redisClient.Close() //nolint:errcheck
		health.Redis = redisClient
		log.Info("redis connected")
	}

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer temporalClient.Close()
		health.Temporal = temporalClient
	}

	relay, err := newRelay(cfg, redisClient, log)
	if err != nil {
		log.Error("failed to setup broadcast relay", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer relay.Close() //nolint:errcheck
	health.Broadcast = relay
	if cfg.BroadcastBackend == config.BroadcastLocal && !cfg.EmbeddedWorker {
		log.Warn("local broadcast relay without an embedded worker; watchers only see updates made by this process")
	}

	hub := broadcast.NewHub(log, originChecker(cfg.CORSAllowedOrigins))
	go hub.Run(runCtx)
	go func() {
		if err := relay.Consume(runCtx, hub.Broadcast); err != nil {
			log.Error("broadcast relay stopped", "error", err)
		}
	}()

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		SessionStore:   newSessionStore(cfg, redisClient, log),
		Relay:          relay,
		Hub:            hub,
	}

	// One container per process: in memory mode it holds the only copy of the data.
	svcs, err := auctionSvcs.New(ctx, appConfig)
	if err != nil {
		log.Error("failed to wire auction services", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if cfg.EmbeddedWorker {
		stopWorker, err := background.Start(runCtx, appConfig, svcs)
		if err != nil {
			log.Error("failed to start embedded worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer stopWorker()
		log.Info("embedded worker started")
	}

	bidThrottle := httpx.NewKeyedThrottle(cfg.BidRatePerMinute)
	go bidThrottle.Run(runCtx)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RequestsPerMinute:  cfg.HTTPRatePerMinute,
			MaxBodyBytes:       cfg.HTTPMaxBodyBytes,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(health))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		auctionApi.AuctionRoutes(r, appConfig, svcs, bidThrottle)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	cancelRun()
	log.Info("server stopped")
}

// newSessionStore prefers Redis-backed sessions and falls back to cookies.
func newSessionStore(cfg *config.Config, redisClient *cache.RedisClient, log logger.Logger) sessions.Store {
	sc := auth.SessionConfigFrom(cfg)
	if redisClient != nil {
		log.Info("session store initialized", "backend", "redis", "max_age", cfg.SessionMaxAge)
		return auth.NewSessionStore(redisClient.Client(), sc)
	}
	log.Info("session store initialized", "backend", "cookie", "max_age", cfg.SessionMaxAge)
	return auth.NewCookieSessionStore(sc)
}

// newRelay selects the broadcast relay named by BROADCAST_BACKEND.
func newRelay(cfg *config.Config, redisClient *cache.RedisClient, log logger.Logger) (broadcast.Relay, error) {
	switch cfg.BroadcastBackend {
	case config.BroadcastRedis:
		if redisClient == nil {
			return nil, errors.New("BROADCAST_BACKEND=redis requires REDIS_URL")
		}
		return broadcast.NewRedisRelay(redisClient.Client(), log), nil
	case config.BroadcastNATS:
		return broadcast.NewNATSRelay(cfg.NATSURL, cfg.ServiceName+"-api", log)
	default:
		return broadcast.NewLocalRelay(), nil
	}
}

// originChecker restricts WebSocket upgrades to the CORS origins. "*" allows any.
func originChecker(allowed string) func(*http.Request) bool {
	if strings.TrimSpace(allowed) == "*" {
		return nil
	}
	origins := make(map[string]struct{})
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := origins[u.Scheme+"://"+u.Host]
		return ok
	}
}
