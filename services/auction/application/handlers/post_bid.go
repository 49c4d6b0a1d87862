package handlers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	pkgvalidator "github.com/ghuser/auctionhouse/pkg/validator"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
)

// PlaceBidRequest is the request body for POST /api/auctions/{id}/bids.
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0,lte=999999999999.99" swaggertype:"string" example:"150.00"`
} // @name PlaceBidRequest

// PlaceBidResponse is returned when a bid is accepted.
type PlaceBidResponse struct {
	Bid     BidResponse     `json:"bid"`
	Auction AuctionResponse `json:"auction"`
} // @name PlaceBidResponse

// PostBidHandler handles POST /api/auctions/{id}/bids requests.
type PostBidHandler struct {
	svc *appsvcs.Services
}

// NewPostBidHandler returns a PostBidHandler backed by the given services.
func NewPostBidHandler(svc *appsvcs.Services) *PostBidHandler {
	return &PostBidHandler{svc: svc}
}

// Execute places a bid on behalf of the caller.
//
//	@Summary		Place bid
//	@Description	Places a bid. The amount must exceed the current price by at least the minimum increment. Bids close to the deadline extend it.
//	@Tags			bids
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Auction ID"
//	@Param			request	body		PlaceBidRequest	true	"Bid"
//	@Success		201		{object}	PlaceBidResponse
//	@Failure		400		{object}	errhttp.ErrorResponse
//	@Failure		401		{object}	errhttp.ErrorResponse
//	@Failure		403		{object}	errhttp.ErrorResponse
//	@Failure		404		{object}	errhttp.ErrorResponse
//	@Failure		409		{object}	errhttp.ErrorResponse
//	@Failure		422		{object}	errhttp.ErrorResponse
//	@Failure		429		{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id}/bids [post]
func (h *PostBidHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[PlaceBidRequest](w, r)
	if !ok {
		return
	}

	// The seller never changes after creation, so a cached read is enough here.
	current, err := h.svc.Auction.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if current.SellerID == userID {
		errhttp.WriteError(w, fmt.Errorf("%w: auction %s", auctiondomain.ErrSelfBid, id))
		return
	}

	a, err := h.svc.Auction.PlaceBid(r.Context(), id, userID, req.Amount)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, PlaceBidResponse{
		Bid:     NewBidResponse(a.Bids[len(a.Bids)-1]),
		Auction: NewAuctionResponse(a),
	})
}
