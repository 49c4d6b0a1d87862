package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/logger"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/memory"
)

var (
	t0        = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	productID = uuid.MustParse("0b7f5b0e-5d0c-4b8e-9a51-7c3c2a1d9e11")
)

const seller = "seller-1"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeScheduler struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (f *fakeScheduler) ScheduleClose(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

type fixture struct {
	svc    *AuctionService
	repo   *memory.AuctionRepository
	clock  *clock
	reader *sdkmetric.ManualReader
	sched  *fakeScheduler
}

func newFixture(t *testing.T, repoOpts ...memory.Option) *fixture {
	t.Helper()
	clk := &clock{now: t0}
	log := logger.New(&config.Config{LogLevel: "error"})
	repo := memory.NewAuctionRepository(nil, log, append([]memory.Option{memory.WithClock(clk.Now)}, repoOpts...)...)
	catalog := memory.NewCatalog(repositories.ProductRef{ID: productID, SellerID: seller, Title: "Camera"})

	reader := sdkmetric.NewManualReader()
	metrics, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	sched := &fakeScheduler{}
	svc := NewAuctionService(repo, catalog, log, WithClock(clk.Now), WithMetrics(metrics), WithScheduler(sched))
	return &fixture{svc: svc, repo: repo, clock: clk, reader: reader, sched: sched}
}

func (f *fixture) create(t *testing.T, in CreateAuctionInput) *models.Auction {
	t.Helper()
	if in.ProductID == uuid.Nil {
		in.ProductID = productID
	}
	a, err := f.svc.Create(context.Background(), seller, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func (f *fixture) counter(t *testing.T, name string, attr ...string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := f.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is not an int64 sum", name)
			}
			for _, dp := range sum.DataPoints {
				if len(attr) == 2 {
					v, ok := dp.Attributes.Value(attribute.Key(attr[0]))
					if !ok || v.AsString() != attr[1] {
						continue
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreate_AppliesDefaultsAndSchedules(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("100")})

	if a.Status != models.StatusActive {
		t.Errorf("status = %s, want active", a.Status)
	}
	if !a.EndTime.Equal(t0.Add(models.DefaultDuration)) {
		t.Errorf("end time = %s, want start + 7d", a.EndTime)
	}
	if !a.MinBidIncrement.Equal(d("1")) || a.AutoExtendMinutes != 5 {
		t.Errorf("defaults not applied: increment=%s extend=%d", a.MinBidIncrement, a.AutoExtendMinutes)
	}
	if a.SellerID != seller {
		t.Errorf("seller = %q, want %q", a.SellerID, seller)
	}
	if len(f.sched.ids) != 1 || f.sched.ids[0] != a.ID {
		t.Errorf("scheduler calls = %v, want [%s]", f.sched.ids, a.ID)
	}
}

func TestCreate_FutureStartIsScheduled(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("10"), StartTime: t0.Add(time.Hour)})
	if a.Status != models.StatusScheduled {
		t.Fatalf("status = %s, want scheduled", a.Status)
	}
}

func TestCreate_SchedulerFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.sched.err = errors.New("temporal down")
	if _, err := f.svc.Create(context.Background(), seller, CreateAuctionInput{ProductID: productID, StartingPrice: d("1")}); err != nil {
		t.Fatalf("Create should tolerate scheduler failure: %v", err)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		in      CreateAuctionInput
		wantErr error
	}{
		{"unknown product", seller, CreateAuctionInput{ProductID: uuid.New(), StartingPrice: d("1")}, auctiondomain.ErrProductNotFound},
		{"foreign product", "someone-else", CreateAuctionInput{ProductID: productID, StartingPrice: d("1")}, auctiondomain.ErrNotProductOwner},
		{"negative price", seller, CreateAuctionInput{ProductID: productID, StartingPrice: d("-1")}, auctiondomain.ErrInvalidAuction},
		{"end in the past", seller, CreateAuctionInput{ProductID: productID, StartingPrice: d("1"), StartTime: t0.Add(-2 * time.Hour), EndTime: t0.Add(-time.Hour)}, auctiondomain.ErrInvalidAuction},
		{"tiny increment", seller, CreateAuctionInput{ProductID: productID, StartingPrice: d("1"), MinBidIncrement: decimal.NewNullDecimal(d("0.001"))}, auctiondomain.ErrInvalidAuction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.caller, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.sched.ids) != 0 {
				t.Error("rejected auction was scheduled")
			}
		})
	}
}

func TestPlaceBid_AcceptsAndRecordsMetrics(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("100"), MinBidIncrement: decimal.NewNullDecimal(d("5"))})

	got, err := f.svc.PlaceBid(context.Background(), a.ID, "bidder-1", d("105"))
	if err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if !got.CurrentPrice.Equal(d("105")) || len(got.Bids) != 1 || got.Version != 2 {
		t.Errorf("unexpected auction after bid: %+v", got)
	}

	_, err = f.svc.PlaceBid(context.Background(), a.ID, "bidder-2", d("109.99"))
	if !errors.Is(err, auctiondomain.ErrBelowMinIncrement) {
		t.Fatalf("expected ErrBelowMinIncrement, got %v", err)
	}
	_, err = f.svc.PlaceBid(context.Background(), a.ID, "bidder-2", d("105"))
	if !errors.Is(err, auctiondomain.ErrBidTooLow) {
		t.Fatalf("expected ErrBidTooLow, got %v", err)
	}

	if n := f.counter(t, "auction_bids_accepted_total"); n != 1 {
		t.Errorf("accepted = %d, want 1", n)
	}
	if n := f.counter(t, "auction_bids_rejected_total", "reason", "below_increment"); n != 1 {
		t.Errorf("rejected below_increment = %d, want 1", n)
	}
	if n := f.counter(t, "auction_bids_rejected_total", "reason", "too_low"); n != 1 {
		t.Errorf("rejected too_low = %d, want 1", n)
	}
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceBid(context.Background(), uuid.New(), "bidder-1", d("10"))
	if !errors.Is(err, auctiondomain.ErrAuctionNotFound) {
		t.Fatalf("expected ErrAuctionNotFound, got %v", err)
	}
}

func TestPlaceBid_PersistenceFailureIsNoOp(t *testing.T) {
	var failing bool
	f := newFixture(t, memory.WithCommitHook(func(*models.Auction) error {
		if failing {
			return errors.New("write failed")
		}
		return nil
	}))
	a := f.create(t, CreateAuctionInput{StartingPrice: d("100")})
	failing = true

	_, err := f.svc.PlaceBid(context.Background(), a.ID, "bidder-1", d("150"))
	if !errors.Is(err, auctiondomain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	got, _ := f.svc.GetByID(context.Background(), a.ID)
	if len(got.Bids) != 0 || !got.CurrentPrice.Equal(d("100")) {
		t.Errorf("failed bid changed state: %+v", got)
	}
}

func TestEndAuction_WinnerAndSecondCall(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("100"), ReservePrice: decimal.NewNullDecimal(d("150"))})
	for i, amt := range []string{"120", "150"} {
		if _, err := f.svc.PlaceBid(context.Background(), a.ID, []string{"alice", "bob"}[i], d(amt)); err != nil {
			t.Fatalf("bid %s: %v", amt, err)
		}
	}

	ended, err := f.svc.EndAuction(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("EndAuction: %v", err)
	}
	if ended.Status != models.StatusEnded || ended.WinnerID != "bob" {
		t.Errorf("status=%s winner=%q, want ended/bob", ended.Status, ended.WinnerID)
	}
	if n := f.counter(t, "auction_closed_total", "outcome", "sold"); n != 1 {
		t.Errorf("closed sold = %d, want 1", n)
	}

	if _, err := f.svc.EndAuction(context.Background(), a.ID); !errors.Is(err, auctiondomain.ErrAuctionNotActive) {
		t.Fatalf("second EndAuction: expected ErrAuctionNotActive, got %v", err)
	}
	if _, err := f.svc.PlaceBid(context.Background(), a.ID, "carol", d("500")); !errors.Is(err, auctiondomain.ErrAuctionNotActive) {
		t.Fatalf("bid after end: expected ErrAuctionNotActive, got %v", err)
	}
}

func TestCloseIfDue_HonorsExtension(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("100"), EndTime: t0.Add(time.Hour)})

	f.clock.Advance(59 * time.Minute)
	if _, err := f.svc.PlaceBid(context.Background(), a.ID, "alice", d("101")); err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}

	f.clock.Advance(time.Minute)
	got, closed, err := f.svc.CloseIfDue(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("CloseIfDue: %v", err)
	}
	if closed || got.Status != models.StatusActive {
		t.Fatalf("extended auction closed early: closed=%v status=%s", closed, got.Status)
	}

	f.clock.Advance(5 * time.Minute)
	got, closed, err = f.svc.CloseIfDue(context.Background(), a.ID)
	if err != nil || !closed || got.WinnerID != "alice" {
		t.Fatalf("expected close with winner alice, got closed=%v winner=%q err=%v", closed, got.WinnerID, err)
	}
}

func TestCloseBySeller(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("100")})

	if _, err := f.svc.CloseBySeller(context.Background(), a.ID, "intruder"); !errors.Is(err, auctiondomain.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	got, err := f.svc.CloseBySeller(context.Background(), a.ID, seller)
	if err != nil {
		t.Fatalf("CloseBySeller: %v", err)
	}
	if got.Status != models.StatusEnded || got.HasWinner() {
		t.Errorf("expected ended without winner, got %+v", got)
	}
	if n := f.counter(t, "auction_closed_total", "outcome", "no_bids"); n != 1 {
		t.Errorf("closed no_bids = %d, want 1", n)
	}
}

func TestActivate(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("10"), StartTime: t0.Add(time.Hour)})

	if _, err := f.svc.Activate(context.Background(), a.ID); !errors.Is(err, auctiondomain.ErrAuctionNotStarted) {
		t.Fatalf("early activate: expected ErrAuctionNotStarted, got %v", err)
	}
	f.clock.Advance(time.Hour)
	got, err := f.svc.Activate(context.Background(), a.ID)
	if err != nil || got.Status != models.StatusActive {
		t.Fatalf("activate: status=%v err=%v", got, err)
	}
	if _, err := f.svc.Activate(context.Background(), a.ID); !errors.Is(err, auctiondomain.ErrAuctionNotScheduled) {
		t.Fatalf("second activate: expected ErrAuctionNotScheduled, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("10")})

	if _, err := f.svc.Cancel(context.Background(), a.ID, "intruder"); !errors.Is(err, auctiondomain.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	got, err := f.svc.Cancel(context.Background(), a.ID, seller)
	if err != nil || got.Status != models.StatusCancelled {
		t.Fatalf("cancel: %v %v", got, err)
	}
	if _, err := f.svc.Cancel(context.Background(), a.ID, seller); !errors.Is(err, auctiondomain.ErrInvalidTransition) {
		t.Fatalf("second cancel: expected ErrInvalidTransition, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	withBids := f.create(t, CreateAuctionInput{StartingPrice: d("10")})
	if _, err := f.svc.PlaceBid(context.Background(), withBids.ID, "alice", d("11")); err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if err := f.svc.Delete(context.Background(), withBids.ID, seller); !errors.Is(err, auctiondomain.ErrAuctionHasBids) {
		t.Fatalf("expected ErrAuctionHasBids, got %v", err)
	}

	empty := f.create(t, CreateAuctionInput{StartingPrice: d("10")})
	if err := f.svc.Delete(context.Background(), empty.ID, "intruder"); !errors.Is(err, auctiondomain.ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), empty.ID, seller); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), empty.ID); !errors.Is(err, auctiondomain.ErrAuctionNotFound) {
		t.Fatalf("expected ErrAuctionNotFound after delete, got %v", err)
	}

	if _, err := f.svc.EndAuction(context.Background(), withBids.ID); err != nil {
		t.Fatalf("EndAuction: %v", err)
	}
	if err := f.svc.Delete(context.Background(), withBids.ID, seller); err != nil {
		t.Fatalf("ended auctions with bids can be deleted: %v", err)
	}
}

func TestBidsAndList(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, CreateAuctionInput{StartingPrice: d("10")})
	f.create(t, CreateAuctionInput{StartingPrice: d("10"), StartTime: t0.Add(time.Hour)})

	for _, amt := range []string{"11", "12", "13"} {
		if _, err := f.svc.PlaceBid(context.Background(), a.ID, "alice", d(amt)); err != nil {
			t.Fatalf("bid: %v", err)
		}
	}
	bids, err := f.svc.Bids(context.Background(), a.ID)
	if err != nil || len(bids) != 3 || !bids[2].Amount.Equal(d("13")) {
		t.Fatalf("Bids = %v, %v", bids, err)
	}

	active, total, err := f.svc.List(context.Background(), repositories.QueryOpts{Status: models.StatusActive, Limit: 10})
	if err != nil || total != 1 || active[0].ID != a.ID {
		t.Fatalf("List active: total=%d err=%v", total, err)
	}
}

func TestRefreshCache_NoCacheIsNoop(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.RefreshCache(context.Background(), uuid.New()); err != nil {
		t.Fatalf("RefreshCache without cache: %v", err)
	}
}
