package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres/db"
)

func TestPersistenceErr(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantPersist bool
		wantSame    bool
	}{
		{"nil", nil, false, true},
		{"not found passes through", fmt.Errorf("%w: x", auctiondomain.ErrAuctionNotFound), false, true},
		{"product not found passes through", auctiondomain.ErrProductNotFound, false, true},
		{"already wrapped", fmt.Errorf("%w: x", auctiondomain.ErrPersistence), true, true},
		{"driver error wrapped", errors.New("connection reset"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := persistenceErr(tt.err)
			if errors.Is(got, auctiondomain.ErrPersistence) != tt.wantPersist {
				t.Errorf("errors.Is(ErrPersistence) = %v, want %v", !tt.wantPersist, tt.wantPersist)
			}
			if tt.wantSame && got != tt.err {
				t.Errorf("expected error to pass through unchanged, got %v", got)
			}
			if tt.err != nil && !errors.Is(got, tt.err) {
				t.Errorf("original error lost: %v", got)
			}
		})
	}
}

func TestNotFoundOr(t *testing.T) {
	id := uuid.New()
	if err := notFoundOr(sql.ErrNoRows, id, "query"); !errors.Is(err, auctiondomain.ErrAuctionNotFound) {
		t.Fatalf("expected ErrAuctionNotFound, got %v", err)
	}
	boom := errors.New("boom")
	if err := notFoundOr(boom, id, "query"); !errors.Is(err, boom) || errors.Is(err, auctiondomain.ErrAuctionNotFound) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestRowToAuction(t *testing.T) {
	now := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	row := db.Auction{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		SellerID:          "seller-1",
		StartTime:         now,
		EndTime:           now.Add(time.Hour),
		StartingPrice:     decimal.NewFromInt(100),
		CurrentPrice:      decimal.NewFromInt(150),
		MinBidIncrement:   decimal.NewFromInt(5),
		ReservePrice:      decimal.NewNullDecimal(decimal.NewFromInt(200)),
		Status:            "ended",
		WinnerID:          sql.NullString{String: "bidder-2", Valid: true},
		AutoExtendMinutes: 5,
		Version:           4,
	}
	bids := []db.AuctionBid{
		{ID: uuid.New(), AuctionID: row.ID, Seq: 0, BidderID: "bidder-1", Amount: decimal.NewFromInt(120), PlacedAt: now},
		{ID: uuid.New(), AuctionID: row.ID, Seq: 1, BidderID: "bidder-2", Amount: decimal.NewFromInt(150), PlacedAt: now.Add(time.Minute)},
	}

	a := rowToAuction(row, bids)
	if a.Status != models.StatusEnded || a.WinnerID != "bidder-2" || a.Version != 4 {
		t.Errorf("unexpected header fields: %+v", a)
	}
	if a.BuyNowPrice.Valid {
		t.Error("buy-now price should be unset")
	}
	if len(a.Bids) != 2 || a.Bids[1].BidderID != "bidder-2" {
		t.Fatalf("bids not mapped in order: %+v", a.Bids)
	}
}

func TestRowToAuction_NoBidsIsEmptySlice(t *testing.T) {
	a := rowToAuction(db.Auction{Status: "active"}, nil)
	if a.Bids == nil || len(a.Bids) != 0 {
		t.Fatalf("expected empty non-nil bids, got %#v", a.Bids)
	}
}

func TestNullString(t *testing.T) {
	if nullString("").Valid {
		t.Error("empty string should be NULL")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("unexpected %+v", ns)
	}
}
