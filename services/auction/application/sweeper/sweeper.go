// Package sweeper drives time-based lifecycle transitions: it activates
// scheduled auctions whose start time has passed and ends active auctions
// whose deadline has passed.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// maxBatchesPerPass bounds one pass so a store returning the same failing ids
// cannot spin forever.
const maxBatchesPerPass = 50

// Finder lists auctions due for a transition.
type Finder interface {
	FindDueForClose(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	FindDueForStart(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// Lifecycle applies the transitions under the auction's exclusion.
type Lifecycle interface {
	Activate(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	CloseIfDue(ctx context.Context, id uuid.UUID) (*models.Auction, bool, error)
}

// Config controls the sweep cadence.
type Config struct {
	Interval  time.Duration
	BatchSize int
}

// Result counts the transitions made by one pass.
type Result struct {
	Started int
	Closed  int
	Failed  int
}

// Sweeper periodically applies due lifecycle transitions. Passes are safe to
// rerun and to run in several processes at once: every transition goes
// through the same per-auction exclusion as bidding.
type Sweeper struct {
	finder  Finder
	svc     Lifecycle
	metrics *appsvcs.Metrics
	cfg     Config
	log     logger.Logger
	now     func() time.Time
}

// New returns a Sweeper. A nil metrics disables instrumentation.
func New(finder Finder, svc Lifecycle, metrics *appsvcs.Metrics, cfg Config, log logger.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Sweeper{finder: finder, svc: svc, metrics: metrics, cfg: cfg, log: log, now: time.Now}
}

// Run sweeps immediately and then every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("sweeper started", "interval", s.cfg.Interval, "batch_size", s.cfg.BatchSize)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if res := s.SweepOnce(ctx); res.Started+res.Closed+res.Failed > 0 {
			s.log.InfoContext(ctx, "sweep pass finished",
				"started", res.Started,
				"closed", res.Closed,
				"failed", res.Failed,
			)
		}
		select {
		case <-ctx.Done():
			s.log.Info("sweeper shutting down")
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce activates every due scheduled auction, then ends every due active one.
func (s *Sweeper) SweepOnce(ctx context.Context) Result {
	var res Result

	start := time.Now()
	s.drain(ctx, "start", s.finder.FindDueForStart, func(id uuid.UUID) (bool, error) {
		_, err := s.svc.Activate(ctx, id)
		return err == nil, err
	}, &res.Started, &res.Failed)
	s.metrics.ObserveSweep(ctx, "start", time.Since(start))

	start = time.Now()
	s.drain(ctx, "close", s.finder.FindDueForClose, func(id uuid.UUID) (bool, error) {
		_, closed, err := s.svc.CloseIfDue(ctx, id)
		return closed, err
	}, &res.Closed, &res.Failed)
	s.metrics.ObserveSweep(ctx, "close", time.Since(start))

	return res
}

type findFunc func(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)

func (s *Sweeper) drain(ctx context.Context, kind string, find findFunc, apply func(uuid.UUID) (bool, error), done, failed *int) {
	for range maxBatchesPerPass {
		if ctx.Err() != nil {
			return
		}
		ids, err := find(ctx, s.now(), s.cfg.BatchSize)
		if err != nil {
			s.log.ErrorContext(ctx, "sweeper: find due auctions failed", "kind", kind, "error", err)
			return
		}

		progressed := false
		for _, id := range ids {
			ok, err := apply(id)
			switch {
			case err == nil:
				if ok {
					*done++
					progressed = true
				}
			case lostRace(err):
				// Someone else moved it first; it no longer matches the query.
				progressed = true
			default:
				*failed++
				s.log.ErrorContext(ctx, "sweeper: transition failed", "kind", kind, "auction_id", id, "error", err)
			}
		}
		if len(ids) < s.cfg.BatchSize || !progressed {
			return
		}
	}
}

func lostRace(err error) bool {
	return errors.Is(err, auctiondomain.ErrAuctionNotActive) ||
		errors.Is(err, auctiondomain.ErrAuctionNotScheduled) ||
		errors.Is(err, auctiondomain.ErrAuctionNotFound)
}
