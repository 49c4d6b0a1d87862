// Package background starts the auction context's asynchronous work: event
// subscribers, the lifecycle sweeper and the Temporal close worker. It runs
// in cmd/worker, or inside cmd/api when EMBEDDED_WORKER is set.
package background

import (
	"context"
	"fmt"
	"sync"

	temporalworker "go.temporal.io/sdk/worker"

	"github.com/ghuser/auctionhouse/pkg/app"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/application/subscribers"
	"github.com/ghuser/auctionhouse/services/auction/application/sweeper"
	"github.com/ghuser/auctionhouse/services/auction/application/workflows"
)

// Start registers subscribers and launches the sweeper and, when a Temporal
// client is configured, the close workflow worker. The returned stop func
// cancels the sweeper, stops the Temporal worker and waits for both.
func Start(ctx context.Context, a *app.Application, svcs *appsvcs.Services) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)

	if err := subscribers.Register(ctx, a.EventBus, svcs.Auction, a.Relay, a.Logger); err != nil {
		cancel()
		return nil, fmt.Errorf("register subscribers: %w", err)
	}

	var tw temporalworker.Worker
	if a.TemporalClient != nil {
		tw = a.TemporalClient.NewWorker(a.Config.TemporalTaskQueue)
		workflows.Register(tw, workflows.NewActivities(svcs.Auction))
		if err := tw.Start(); err != nil {
			cancel()
			return nil, fmt.Errorf("start temporal worker: %w", err)
		}
		a.Logger.Info("temporal worker started", "task_queue", a.Config.TemporalTaskQueue)
	}

	sw := sweeper.New(svcs.Repo, svcs.Auction, svcs.Metrics, sweeper.Config{
		Interval:  a.Config.SweepInterval,
		BatchSize: a.Config.SweepBatchSize,
	}, a.Logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sw.Run(ctx)
	}()

	return func() {
		cancel()
		if tw != nil {
			tw.Stop()
		}
		wg.Wait()
	}, nil
}
