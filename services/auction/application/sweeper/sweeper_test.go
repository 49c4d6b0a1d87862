package sweeper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/memory"
)

var t0 = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

type harness struct {
	repo    *memory.AuctionRepository
	sweeper *Sweeper
}

func newHarness(t *testing.T, batch int) *harness {
	t.Helper()
	now := func() time.Time { return t0 }
	log := testLogger()
	repo := memory.NewAuctionRepository(nil, log, memory.WithClock(now))
	svc := appsvcs.NewAuctionService(repo, memory.NewCatalog(), log, appsvcs.WithClock(now))
	s := New(repo, svc, nil, Config{Interval: time.Hour, BatchSize: batch}, log)
	s.now = now
	return &harness{repo: repo, sweeper: s}
}

// seed stores an auction as if created at createdAt.
func (h *harness) seed(t *testing.T, createdAt, start, end time.Time) uuid.UUID {
	t.Helper()
	a := models.NewAuction(models.NewAuctionParams{
		ProductID:     uuid.New(),
		SellerID:      "seller-1",
		StartTime:     start,
		EndTime:       end,
		StartingPrice: decimal.NewFromInt(100),
	}, createdAt)
	if err := h.repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a.ID
}

func (h *harness) status(t *testing.T, id uuid.UUID) models.Status {
	t.Helper()
	a, err := h.repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return a.Status
}

func TestSweepOnce_AppliesDueTransitions(t *testing.T) {
	h := newHarness(t, 10)

	dueStart := h.seed(t, t0.Add(-2*time.Hour), t0.Add(-time.Hour), t0.Add(time.Hour))
	futureStart := h.seed(t, t0.Add(-2*time.Hour), t0.Add(time.Hour), t0.Add(2*time.Hour))
	dueClose := h.seed(t, t0.Add(-2*time.Hour), t0.Add(-2*time.Hour), t0.Add(-time.Minute))
	open := h.seed(t, t0.Add(-2*time.Hour), t0.Add(-2*time.Hour), t0.Add(time.Hour))

	res := h.sweeper.SweepOnce(context.Background())
	if res.Started != 1 || res.Closed != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v, want 1 started, 1 closed", res)
	}

	tests := []struct {
		name string
		id   uuid.UUID
		want models.Status
	}{
		{"due start activated", dueStart, models.StatusActive},
		{"future start left scheduled", futureStart, models.StatusScheduled},
		{"due close ended", dueClose, models.StatusEnded},
		{"open auction untouched", open, models.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.status(t, tt.id); got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSweepOnce_DrainsInBatches(t *testing.T) {
	h := newHarness(t, 2)
	var ids []uuid.UUID
	for i := range 5 {
		ids = append(ids, h.seed(t, t0.Add(-2*time.Hour), t0.Add(-2*time.Hour), t0.Add(-time.Duration(i+1)*time.Minute)))
	}

	res := h.sweeper.SweepOnce(context.Background())
	if res.Closed != 5 {
		t.Fatalf("closed = %d, want 5", res.Closed)
	}
	for _, id := range ids {
		if got := h.status(t, id); got != models.StatusEnded {
			t.Errorf("auction %s status = %s, want ended", id, got)
		}
	}
}

func TestSweepOnce_Idempotent(t *testing.T) {
	h := newHarness(t, 10)
	h.seed(t, t0.Add(-2*time.Hour), t0.Add(-2*time.Hour), t0.Add(-time.Minute))

	first := h.sweeper.SweepOnce(context.Background())
	second := h.sweeper.SweepOnce(context.Background())
	if first.Closed != 1 {
		t.Fatalf("first pass closed = %d, want 1", first.Closed)
	}
	if second != (Result{}) {
		t.Errorf("second pass = %+v, want no work", second)
	}
}

type stuckFinder struct {
	ids   []uuid.UUID
	mu    sync.Mutex
	calls int
}

func (f *stuckFinder) FindDueForClose(context.Context, time.Time, int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ids, nil
}

func (f *stuckFinder) FindDueForStart(context.Context, time.Time, int) ([]uuid.UUID, error) {
	return nil, nil
}

type scriptedLifecycle struct {
	closeErr error
}

func (l scriptedLifecycle) Activate(context.Context, uuid.UUID) (*models.Auction, error) {
	return nil, nil
}

func (l scriptedLifecycle) CloseIfDue(context.Context, uuid.UUID) (*models.Auction, bool, error) {
	return nil, false, l.closeErr
}

func TestSweepOnce_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantFailed int
		wantCalls  int
	}{
		{
			name:       "persistence failure stops the pass",
			err:        fmt.Errorf("end auction: %w", auctiondomain.ErrPersistence),
			wantFailed: 2,
			wantCalls:  1,
		},
		{
			name:       "lost race is not a failure",
			err:        fmt.Errorf("end auction: %w", auctiondomain.ErrAuctionNotActive),
			wantFailed: 0,
			wantCalls:  maxBatchesPerPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stuckFinder{ids: []uuid.UUID{uuid.New(), uuid.New()}}
			s := New(finder, scriptedLifecycle{closeErr: tt.err}, nil, Config{BatchSize: 2}, testLogger())

			res := s.SweepOnce(context.Background())
			if res.Failed != tt.wantFailed {
				t.Errorf("failed = %d, want %d", res.Failed, tt.wantFailed)
			}
			if finder.calls != tt.wantCalls {
				t.Errorf("find calls = %d, want %d", finder.calls, tt.wantCalls)
			}
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.sweeper.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
