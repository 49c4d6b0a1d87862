package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Creation defaults and limits.
const (
	DefaultDuration          = 7 * 24 * time.Hour
	DefaultAutoExtendMinutes = 5
	MaxAutoExtendMinutes     = 24 * 60
)

// Money is exact to the cent and below 10^12 in magnitude.
const (
	MoneyScale        = 2
	MaxMoneyIntDigits = 12
)

// DefaultMinBidIncrement is applied when the seller leaves the increment unset.
var DefaultMinBidIncrement = decimal.NewFromInt(1)

// Bid is an immutable offer recorded against an Auction.
type Bid struct {
	ID       uuid.UUID
	BidderID string
	Amount   decimal.Decimal
	Time     time.Time
}

// Auction is the aggregate root for the auction bounded context.
// Mutations go through the domain services and are committed by the repository.
type Auction struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SellerID  string

	StartTime time.Time
	EndTime   time.Time // moved forward by auto-extend only

	StartingPrice   decimal.Decimal
	CurrentPrice    decimal.Decimal
	MinBidIncrement decimal.Decimal
	ReservePrice    decimal.NullDecimal
	BuyNowPrice     decimal.NullDecimal // stored only; never short-circuits bidding

	Status   Status
	Bids     []Bid  // append-only, in acceptance order
	WinnerID string // empty unless ended with a qualifying bid

	AutoExtendMinutes int
	IsExtended        bool

	// Version is bumped by the repository on every committed mutation.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuctionParams carries the seller-supplied fields for a new Auction.
// Zero values select the documented defaults.
type NewAuctionParams struct {
	ProductID         uuid.UUID
	SellerID          string
	StartTime         time.Time
	EndTime           time.Time
	StartingPrice     decimal.Decimal
	MinBidIncrement   decimal.NullDecimal
	ReservePrice      decimal.NullDecimal
	BuyNowPrice       decimal.NullDecimal
	AutoExtendMinutes int
}

// NewAuction constructs an Auction with generated ID, defaults applied and an
// initial status derived from now. Field rules are checked separately by
// services.ValidateAuctionForCreation.
func NewAuction(p NewAuctionParams, now time.Time) *Auction {
	now = now.UTC()

	start := p.StartTime
	if start.IsZero() {
		start = now
	}
	end := p.EndTime
	if end.IsZero() {
		end = start.Add(DefaultDuration)
	}
	increment := DefaultMinBidIncrement
	if p.MinBidIncrement.Valid {
		increment = p.MinBidIncrement.Decimal
	}
	extend := p.AutoExtendMinutes
	if extend == 0 {
		extend = DefaultAutoExtendMinutes
	}

	status := StatusScheduled
	if !start.After(now) {
		status = StatusActive
	}

	return &Auction{
		ID:                uuid.New(),
		ProductID:         p.ProductID,
		SellerID:          p.SellerID,
		StartTime:         start.UTC(),
		EndTime:           end.UTC(),
		StartingPrice:     p.StartingPrice,
		CurrentPrice:      p.StartingPrice,
		MinBidIncrement:   increment,
		ReservePrice:      p.ReservePrice,
		BuyNowPrice:       p.BuyNowPrice,
		Status:            status,
		Bids:              []Bid{},
		AutoExtendMinutes: extend,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// AutoExtendWindow is the trailing window in which a bid pushes the close out.
func (a *Auction) AutoExtendWindow() time.Duration {
	return time.Duration(a.AutoExtendMinutes) * time.Minute
}

// LastBid returns the most recently accepted bid.
func (a *Auction) LastBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	return a.Bids[len(a.Bids)-1], true
}

// HasWinner reports whether the auction closed with a qualifying bid.
func (a *Auction) HasWinner() bool {
	return a.WinnerID != ""
}

// Clone returns a deep copy. Repositories hand out clones so callers never
// observe uncommitted mutations.
func (a *Auction) Clone() *Auction {
	if a == nil {
		return nil
	}
	c := *a
	c.Bids = make([]Bid, len(a.Bids))
	copy(c.Bids, a.Bids)
	return &c
}
