package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	pkgvalidator "github.com/ghuser/auctionhouse/pkg/validator"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// CreateAuctionRequest is the request body for POST /api/auctions.
// Omitted times and prices fall back to the creation defaults.
type CreateAuctionRequest struct {
	ProductID         string              `json:"product_id"          validate:"required,uuid"                          example:"6f1c2a4e-2d3b-4c1a-9e0f-1a2b3c4d5e01"`
	StartTime         *time.Time          `json:"start_time"                                                            example:"2026-05-04T18:00:00Z"`
	EndTime           *time.Time          `json:"end_time"                                                              example:"2026-05-11T18:00:00Z"`
	StartingPrice     decimal.Decimal     `json:"starting_price"      validate:"gte=0,lte=999999999999.99"              swaggertype:"string" example:"100.00"`
	MinBidIncrement   decimal.NullDecimal `json:"min_bid_increment"   validate:"omitempty,gte=0.01,lte=999999999999.99" swaggertype:"string" example:"1.00"`
	ReservePrice      decimal.NullDecimal `json:"reserve_price"       validate:"omitempty,gte=0,lte=999999999999.99"    swaggertype:"string" example:"200.00"`
	BuyNowPrice       decimal.NullDecimal `json:"buy_now_price"       validate:"omitempty,gte=0,lte=999999999999.99"    swaggertype:"string" example:"500.00"`
	AutoExtendMinutes int                 `json:"auto_extend_minutes" validate:"omitempty,gte=1,lte=1440"               example:"5"`
} // @name CreateAuctionRequest

// PostAuctionHandler handles POST /api/auctions requests.
type PostAuctionHandler struct {
	svc *appsvcs.Services
}

// NewPostAuctionHandler returns a PostAuctionHandler backed by the given services.
func NewPostAuctionHandler(svc *appsvcs.Services) *PostAuctionHandler {
	return &PostAuctionHandler{svc: svc}
}

// Execute creates an auction for a product owned by the caller.
//
//	@Summary		Create auction
//	@Description	Creates an auction for a catalog product owned by the caller. It starts active when start_time is now or in the past, scheduled otherwise.
//	@Tags			auctions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAuctionRequest	true	"Auction creation request"
//	@Success		201		{object}	AuctionResponse
//	@Failure		400		{object}	errhttp.ErrorResponse
//	@Failure		401		{object}	errhttp.ErrorResponse
//	@Failure		403		{object}	errhttp.ErrorResponse
//	@Failure		404		{object}	errhttp.ErrorResponse
//	@Failure		422		{object}	errhttp.ErrorResponse
//	@Router			/auctions [post]
func (h *PostAuctionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateAuctionRequest](w, r)
	if !ok {
		return
	}

	in := appsvcs.CreateAuctionInput{
		ProductID:         uuid.MustParse(req.ProductID),
		StartingPrice:     req.StartingPrice,
		MinBidIncrement:   req.MinBidIncrement,
		ReservePrice:      req.ReservePrice,
		BuyNowPrice:       req.BuyNowPrice,
		AutoExtendMinutes: req.AutoExtendMinutes,
	}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		in.EndTime = *req.EndTime
	}

	a, err := h.svc.Auction.Create(r.Context(), userID, in)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewAuctionResponse(a))
}
