package background

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/broadcast"
	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

func TestStart_SweepsAndRelays(t *testing.T) {
	cfg := &config.Config{
		LogLevel:       "error",
		StoreBackend:   config.StoreMemory,
		SweepInterval:  10 * time.Millisecond,
		SweepBatchSize: 10,
	}
	log := logger.New(cfg)
	bus := events.NewInMemoryEventBus(log)
	t.Cleanup(func() { _ = bus.Close() })

	relay := broadcast.NewLocalRelay()
	rooms := make(chan string, 16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = relay.Consume(ctx, func(room string, _ []byte) { rooms <- room })
	}()

	a := &app.Application{Config: cfg, Logger: log, EventBus: bus, Relay: relay}
	svcs, err := appsvcs.New(ctx, a)
	if err != nil {
		t.Fatalf("services: %v", err)
	}

	stop, err := Start(ctx, a, svcs)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stop()

	now := time.Now()
	due := models.NewAuction(models.NewAuctionParams{
		ProductID:     uuid.New(),
		SellerID:      "seller-1",
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(-time.Second),
		StartingPrice: decimal.NewFromInt(1),
	}, now.Add(-2*time.Hour))
	if err := svcs.Repo.Create(ctx, due); err != nil {
		t.Fatalf("Create: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		got, err := svcs.Repo.GetByID(ctx, due.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status == models.StatusEnded {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("auction still %s after sweep interval", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case room := <-rooms:
		if room != due.ID.String() {
			t.Errorf("relayed room = %q, want %q", room, due.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no update relayed")
	}
}
