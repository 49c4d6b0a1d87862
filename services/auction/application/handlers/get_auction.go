package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// GetAuctionHandler handles GET /api/auctions/{id} requests.
type GetAuctionHandler struct {
	svc *appsvcs.Services
}

// NewGetAuctionHandler returns a GetAuctionHandler backed by the given services.
func NewGetAuctionHandler(svc *appsvcs.Services) *GetAuctionHandler {
	return &GetAuctionHandler{svc: svc}
}

// Execute returns one auction.
//
//	@Summary		Get auction
//	@Tags			auctions
//	@Produce		json
//	@Param			id	path		string	true	"Auction ID"
//	@Success		200	{object}	AuctionResponse
//	@Failure		400	{object}	errhttp.ErrorResponse
//	@Failure		404	{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id} [get]
func (h *GetAuctionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Auction.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewAuctionResponse(a))
}
