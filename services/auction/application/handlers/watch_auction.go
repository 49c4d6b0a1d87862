package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/broadcast"
	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// WatchAuctionHandler handles GET /api/auctions/{id}/watch WebSocket upgrades.
type WatchAuctionHandler struct {
	svc *appsvcs.Services
	hub *broadcast.Hub
	log logger.Logger
}

// NewWatchAuctionHandler returns a WatchAuctionHandler. A nil hub answers 503.
func NewWatchAuctionHandler(svc *appsvcs.Services, hub *broadcast.Hub, log logger.Logger) *WatchAuctionHandler {
	return &WatchAuctionHandler{svc: svc, hub: hub, log: log}
}

// Execute upgrades to a WebSocket that streams auction updates.
//
//	@Summary		Watch auction
//	@Description	Upgrades to a WebSocket. The first frame is a snapshot of the auction; every later frame is an AuctionUpdate whose type is the event topic.
//	@Tags			auctions
//	@Param			id	path	string	true	"Auction ID"
//	@Success		101	{object}	AuctionUpdate
//	@Failure		400	{object}	errhttp.ErrorResponse
//	@Failure		404	{object}	errhttp.ErrorResponse
//	@Failure		503	{object}	errhttp.ErrorResponse
//	@Router			/auctions/{id}/watch [get]
func (h *WatchAuctionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}
	if h.hub == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "live updates are not available")
		return
	}

	a, err := h.svc.Auction.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	greeting, err := MarshalUpdate(UpdateTypeSnapshot, a)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	// The upgrader has already answered the client when ServeWS fails.
	if err := h.hub.ServeWS(w, r, id.String(), greeting); err != nil {
		h.log.WarnContext(r.Context(), "watch upgrade failed", "auction_id", id, "error", err)
	}
}
