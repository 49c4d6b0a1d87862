package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// PostCancelHandler handles POST /api/auctions/{id}/cancel requests.
type PostCancelHandler struct {
	svc *appsvcs.Services
}

// NewPostCancelHandler returns a PostCancelHandler backed by the given services.
func NewPostCancelHandler(svc *appsvcs.Services) *PostCancelHandler {
	return &PostCancelHandler{svc: svc}
}

// Execute cancels a scheduled or active auction.
//
//	@Summary		Cancel auction
//	@Tags			auctions
//	@Produce		json
//	@Param			id	path		string	true	"Auction ID"
//	@Success		200	{object}	AuctionResponse
//	@Failure		400	{object}	errhttp.ErrorResponse
//	@Failure		401	{object}	errhttp.ErrorResponse
//	@Failure		403	{object}	errhttp.ErrorResponse
//	@Failure		404	{object}	errhttp.ErrorResponse
//	@Failure		409	{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id}/cancel [post]
func (h *PostCancelHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Auction.Cancel(r.Context(), id, userID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewAuctionResponse(a))
}
