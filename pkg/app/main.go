package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/auctionhouse/pkg/broadcast"
	"github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass it to each service's route and subscriber registration during startup.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "bid accepted", "auction_id", id)
//	app.Logger.ErrorContext(ctx, "failed to close auction", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
//
// Optional dependencies are nil when disabled: Db with STORE_BACKEND=memory,
// Redis with an empty REDIS_URL, TemporalClient unless TEMPORAL_ENABLED.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store // nil in worker process
	Relay          broadcast.Relay
	Hub            *broadcast.Hub // nil in worker process
}
