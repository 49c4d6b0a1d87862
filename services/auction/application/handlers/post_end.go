package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// PostEndHandler handles POST /api/auctions/{id}/end requests.
type PostEndHandler struct {
	svc *appsvcs.Services
}

// NewPostEndHandler returns a PostEndHandler backed by the given services.
func NewPostEndHandler(svc *appsvcs.Services) *PostEndHandler {
	return &PostEndHandler{svc: svc}
}

// Execute closes an active auction early on behalf of its seller.
//
//	@Summary		End auction
//	@Description	Ends an active auction now. The last bidder wins when the reserve is met.
//	@Tags			auctions
//	@Produce		json
//	@Param			id	path		string	true	"Auction ID"
//	@Success		200	{object}	AuctionResponse
//	@Failure		400	{object}	errhttp.ErrorResponse
//	@Failure		401	{object}	errhttp.ErrorResponse
//	@Failure		403	{object}	errhttp.ErrorResponse
//	@Failure		404	{object}	errhttp.ErrorResponse
//	@Failure		409	{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id}/end [post]
func (h *PostEndHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Auction.CloseBySeller(r.Context(), id, userID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewAuctionResponse(a))
}
