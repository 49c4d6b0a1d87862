package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/services/auction/application/workflows"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/memory"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
// Build it once per process: in memory mode it owns the only copy of the data.
type Services struct {
	Auction *AuctionService
	Metrics *Metrics
	Repo    repositories.AuctionRepository
}

// New wires all auction application services with infrastructure from the
// Application container. The store is PostgreSQL when a.Db is set and
// in-process memory otherwise.
func New(ctx context.Context, a *app.Application) (*Services, error) {
	var (
		repo    repositories.AuctionRepository
		catalog repositories.ProductCatalog
	)
	seed := a.Config != nil && a.Config.SeedDemoData

	if a.Db != nil {
		repo = postgres.NewAuctionRepository(a.Db, a.EventBus)
		pgCatalog := postgres.NewCatalog(a.Db)
		if seed {
			if err := pgCatalog.Seed(ctx, memory.DemoProducts); err != nil {
				return nil, fmt.Errorf("seed demo products: %w", err)
			}
		}
		catalog = pgCatalog
	} else {
		var pub memory.Publisher
		if a.EventBus != nil {
			pub = a.EventBus
		}
		repo = memory.NewAuctionRepository(pub, a.Logger)
		memCatalog := memory.NewCatalog()
		if seed {
			for _, p := range memory.DemoProducts {
				memCatalog.Add(p)
			}
		}
		catalog = memCatalog
	}

	metrics, err := NewMetrics(otel.Meter("github.com/ghuser/auctionhouse/services/auction"))
	if err != nil {
		return nil, fmt.Errorf("auction metrics: %w", err)
	}

	opts := []ServiceOption{WithMetrics(metrics)}
	if a.Redis != nil {
		opts = append(opts, WithCache(cache.NewAuctionCache(a.Redis)))
	}
	if a.TemporalClient != nil && a.Config != nil {
		opts = append(opts, WithScheduler(workflows.NewScheduler(a.TemporalClient.Client, a.Config.TemporalTaskQueue)))
	}

	if seed {
		a.Logger.Info("demo products seeded", "count", len(memory.DemoProducts))
	}

	return &Services{
		Auction: NewAuctionService(repo, catalog, a.Logger, opts...),
		Metrics: metrics,
		Repo:    repo,
	}, nil
}
