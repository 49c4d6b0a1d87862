package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// Watermill topics published by the auction repositories.
const (
	TopicAuctionCreated   = "auction.created"
	TopicAuctionStarted   = "auction.started"
	TopicAuctionBidPlaced = "auction.bid_placed"
	TopicAuctionEnded     = "auction.ended"
	TopicAuctionCancelled = "auction.cancelled"
)

// AllTopics lists every topic consumers may subscribe to.
var AllTopics = []string{
	TopicAuctionCreated,
	TopicAuctionStarted,
	TopicAuctionBidPlaced,
	TopicAuctionEnded,
	TopicAuctionCancelled,
}

// SchemaVersion is stamped on every event; increment on breaking changes.
const SchemaVersion = 1

// Event is a domain event ready to be marshalled onto its topic.
type Event interface {
	Topic() string
	Header() Envelope
}

// Envelope carries the fields shared by every auction event.
type Envelope struct {
	EventID        uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version        int       `json:"version"`  // Schema version
	AuctionID      uuid.UUID `json:"auction_id"`
	AuctionVersion int64     `json:"auction_version"` // Aggregate version after the change
	OccurredAt     time.Time `json:"occurred_at"`
}

// Header returns the shared envelope.
func (e Envelope) Header() Envelope { return e }

func newEnvelope(a *models.Auction, at time.Time) Envelope {
	return Envelope{
		EventID:        uuid.New(),
		Version:        SchemaVersion,
		AuctionID:      a.ID,
		AuctionVersion: a.Version,
		OccurredAt:     at.UTC(),
	}
}

// AuctionCreatedEvent is published after a new Auction is persisted.
type AuctionCreatedEvent struct {
	Envelope
	ProductID     uuid.UUID       `json:"product_id"`
	SellerID      string          `json:"seller_id"`
	Status        string          `json:"status"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	StartingPrice decimal.Decimal `json:"starting_price"`
}

func (AuctionCreatedEvent) Topic() string { return TopicAuctionCreated }

// NewAuctionCreated builds the event for a freshly created auction.
func NewAuctionCreated(a *models.Auction) AuctionCreatedEvent {
	return AuctionCreatedEvent{
		Envelope:      newEnvelope(a, a.CreatedAt),
		ProductID:     a.ProductID,
		SellerID:      a.SellerID,
		Status:        a.Status.String(),
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		StartingPrice: a.StartingPrice,
	}
}

// AuctionStartedEvent is published when a scheduled auction opens.
type AuctionStartedEvent struct {
	Envelope
	EndTime time.Time `json:"end_time"`
}

func (AuctionStartedEvent) Topic() string { return TopicAuctionStarted }

// NewAuctionStarted builds the event for an activated auction.
func NewAuctionStarted(a *models.Auction, at time.Time) AuctionStartedEvent {
	return AuctionStartedEvent{Envelope: newEnvelope(a, at), EndTime: a.EndTime}
}

// BidPlacedEvent is published after a bid is accepted.
type BidPlacedEvent struct {
	Envelope
	BidID        uuid.UUID       `json:"bid_id"`
	BidderID     string          `json:"bidder_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	BidCount     int             `json:"bid_count"`
	EndTime      time.Time       `json:"end_time"`
	Extended     bool            `json:"extended"`
}

func (BidPlacedEvent) Topic() string { return TopicAuctionBidPlaced }

// NewBidPlaced builds the event for an accepted bid.
func NewBidPlaced(a *models.Auction, bid models.Bid, extended bool) BidPlacedEvent {
	return BidPlacedEvent{
		Envelope:     newEnvelope(a, bid.Time),
		BidID:        bid.ID,
		BidderID:     bid.BidderID,
		Amount:       bid.Amount,
		CurrentPrice: a.CurrentPrice,
		BidCount:     len(a.Bids),
		EndTime:      a.EndTime,
		Extended:     extended,
	}
}

// AuctionEndedEvent is published when an auction closes.
type AuctionEndedEvent struct {
	Envelope
	WinnerID   string          `json:"winner_id,omitempty"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Outcome    string          `json:"outcome"`
	BidCount   int             `json:"bid_count"`
}

func (AuctionEndedEvent) Topic() string { return TopicAuctionEnded }

// NewAuctionEnded builds the event for a closed auction.
func NewAuctionEnded(a *models.Auction, outcome string, at time.Time) AuctionEndedEvent {
	return AuctionEndedEvent{
		Envelope:   newEnvelope(a, at),
		WinnerID:   a.WinnerID,
		FinalPrice: a.CurrentPrice,
		Outcome:    outcome,
		BidCount:   len(a.Bids),
	}
}

// AuctionCancelledEvent is published when an auction is cancelled.
type AuctionCancelledEvent struct {
	Envelope
	PreviousStatus string `json:"previous_status"`
}

func (AuctionCancelledEvent) Topic() string { return TopicAuctionCancelled }

// NewAuctionCancelled builds the event for a cancelled auction.
func NewAuctionCancelled(a *models.Auction, previous models.Status, at time.Time) AuctionCancelledEvent {
	return AuctionCancelledEvent{Envelope: newEnvelope(a, at), PreviousStatus: previous.String()}
}
