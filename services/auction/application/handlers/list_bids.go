package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// ListBidsHandler handles GET /api/auctions/{id}/bids requests.
type ListBidsHandler struct {
	svc *appsvcs.Services
}

// NewListBidsHandler returns a ListBidsHandler backed by the given services.
func NewListBidsHandler(svc *appsvcs.Services) *ListBidsHandler {
	return &ListBidsHandler{svc: svc}
}

// Execute returns the bid history in acceptance order.
//
//	@Summary		List bids
//	@Description	Returns every accepted bid of an auction, oldest first
//	@Tags			bids
//	@Produce		json
//	@Param			id	path		string	true	"Auction ID"
//	@Success		200	{array}		BidResponse
//	@Failure		400	{object}	errhttp.ErrorResponse
//	@Failure		404	{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id}/bids [get]
func (h *ListBidsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	bids, err := h.svc.Auction.Bids(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, NewBidResponse(b))
	}
	httpx.JSON(w, http.StatusOK, resp)
}
