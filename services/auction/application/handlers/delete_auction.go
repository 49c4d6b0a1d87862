package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// DeleteAuctionHandler handles DELETE /api/auctions/{id} requests.
type DeleteAuctionHandler struct {
	svc *appsvcs.Services
}

// NewDeleteAuctionHandler returns a DeleteAuctionHandler backed by the given services.
func NewDeleteAuctionHandler(svc *appsvcs.Services) *DeleteAuctionHandler {
	return &DeleteAuctionHandler{svc: svc}
}

// Execute deletes an auction and its bid history.
//
//	@Summary		Delete auction
//	@Description	Deletes an auction. Active auctions that already have bids cannot be deleted.
//	@Tags			auctions
//	@Param			id	path	string	true	"Auction ID"
//	@Success		204
//	@Failure		400	{object}	errhttp.ErrorResponse
//	@Failure		401	{object}	errhttp.ErrorResponse
//	@Failure		403	{object}	errhttp.ErrorResponse
//	@Failure		404	{object}	errhttp.ErrorResponse
//	@Failure		409	{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id} [delete]
func (h *DeleteAuctionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Auction.Delete(r.Context(), id, userID); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
