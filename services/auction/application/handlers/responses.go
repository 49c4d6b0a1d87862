package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// AuctionResponse is the public view of an auction.
type AuctionResponse struct {
	ID                uuid.UUID        `json:"id"                      example:"123e4567-e89b-12d3-a456-426614174000"`
	ProductID         uuid.UUID        `json:"product_id"              example:"6f1c2a4e-2d3b-4c1a-9e0f-1a2b3c4d5e01"`
	SellerID          string           `json:"seller_id"               example:"demo-seller-1"`
	StartTime         time.Time        `json:"start_time"              example:"2026-05-04T18:00:00Z"`
	EndTime           time.Time        `json:"end_time"                example:"2026-05-11T18:00:00Z"`
	StartingPrice     decimal.Decimal  `json:"starting_price"          swaggertype:"string" example:"100.00"`
	CurrentPrice      decimal.Decimal  `json:"current_price"           swaggertype:"string" example:"150.00"`
	MinBidIncrement   decimal.Decimal  `json:"min_bid_increment"       swaggertype:"string" example:"1.00"`
	ReservePrice      *decimal.Decimal `json:"reserve_price,omitempty" swaggertype:"string" example:"200.00"`
	BuyNowPrice       *decimal.Decimal `json:"buy_now_price,omitempty" swaggertype:"string" example:"500.00"`
	Status            string           `json:"status"                  example:"active"`
	WinnerID          string           `json:"winner_id,omitempty"     example:"bidder-42"`
	AutoExtendMinutes int              `json:"auto_extend_minutes"     example:"5"`
	IsExtended        bool             `json:"is_extended"             example:"false"`
	BidCount          int              `json:"bid_count"               example:"3"`
	LastBid           *BidResponse     `json:"last_bid,omitempty"`
	Version           int64            `json:"version"                 example:"4"`
	CreatedAt         time.Time        `json:"created_at"              example:"2026-05-04T18:00:00Z"`
	UpdatedAt         time.Time        `json:"updated_at"              example:"2026-05-04T18:05:00Z"`
} // @name AuctionResponse

// BidResponse is one entry of an auction's bid history.
type BidResponse struct {
	ID       uuid.UUID       `json:"id"        example:"0d5c7a5e-3f1b-4f7e-8b7a-2f0b8f1d4c11"`
	BidderID string          `json:"bidder_id" example:"bidder-42"`
	Amount   decimal.Decimal `json:"amount"    swaggertype:"string" example:"150.00"`
	Time     time.Time       `json:"time"      example:"2026-05-04T18:05:00Z"`
} // @name BidResponse

// ListAuctionsResponse is returned by GET /api/auctions.
type ListAuctionsResponse struct {
	Items  []AuctionResponse `json:"items"`
	Total  int               `json:"total"  example:"42"`
	Limit  int               `json:"limit"  example:"20"`
	Offset int               `json:"offset" example:"0"`
} // @name ListAuctionsResponse

// AuctionUpdate is the frame pushed to watchers. Type is the event topic, or
// "snapshot" for the greeting sent on connect.
type AuctionUpdate struct {
	Type    string          `json:"type"    example:"auction.bid_placed"`
	Auction AuctionResponse `json:"auction"`
} // @name AuctionUpdate

// UpdateTypeSnapshot marks the first frame of a watch stream.
const UpdateTypeSnapshot = "snapshot"

// NewAuctionResponse maps the aggregate to its public view.
func NewAuctionResponse(a *models.Auction) AuctionResponse {
	resp := AuctionResponse{
		ID:                a.ID,
		ProductID:         a.ProductID,
		SellerID:          a.SellerID,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		StartingPrice:     a.StartingPrice,
		CurrentPrice:      a.CurrentPrice,
		MinBidIncrement:   a.MinBidIncrement,
		Status:            a.Status.String(),
		WinnerID:          a.WinnerID,
		AutoExtendMinutes: a.AutoExtendMinutes,
		IsExtended:        a.IsExtended,
		BidCount:          len(a.Bids),
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.ReservePrice.Valid {
		reserve := a.ReservePrice.Decimal
		resp.ReservePrice = &reserve
	}
	if a.BuyNowPrice.Valid {
		buyNow := a.BuyNowPrice.Decimal
		resp.BuyNowPrice = &buyNow
	}
	if n := len(a.Bids); n > 0 {
		last := NewBidResponse(a.Bids[n-1])
		resp.LastBid = &last
	}
	return resp
}

// NewBidResponse maps a bid to its public view.
func NewBidResponse(b models.Bid) BidResponse {
	return BidResponse{ID: b.ID, BidderID: b.BidderID, Amount: b.Amount, Time: b.Time}
}

// MarshalUpdate encodes a watcher frame.
func MarshalUpdate(updateType string, a *models.Auction) ([]byte, error) {
	return json.Marshal(AuctionUpdate{Type: updateType, Auction: NewAuctionResponse(a)})
}

// auctionIDParam parses the {id} path segment, writing 400 on failure.
func auctionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid auction id")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller, writing 401 when absent.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
