package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListAuctionsHandler handles GET /api/auctions requests.
type ListAuctionsHandler struct {
	svc *appsvcs.Services
}

// NewListAuctionsHandler returns a ListAuctionsHandler backed by the given services.
func NewListAuctionsHandler(svc *appsvcs.Services) *ListAuctionsHandler {
	return &ListAuctionsHandler{svc: svc}
}

// Execute lists auctions, newest first.
//
//	@Summary		List auctions
//	@Description	Returns a page of auctions, newest first, optionally filtered by status
//	@Tags			auctions
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(scheduled, active, ended, cancelled)
//	@Param			limit	query		int		false	"Page size (max 100)"	default(20)
//	@Param			offset	query		int		false	"Records to skip"		default(0)
//	@Success		200		{object}	ListAuctionsResponse
//	@Failure		400		{object}	errhttp.ErrorResponse
//	@Failure		500		{object}	errhttp.ErrorResponse
//	@Router			/auctions [get]
func (h *ListAuctionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := repositories.QueryOpts{Limit: defaultPageSize}
	if raw := q.Get("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "status must be one of: scheduled, active, ended, cancelled")
			return
		}
		opts.Status = status
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			httpx.JSONError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		opts.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		opts.Offset = n
	}

	auctions, total, err := h.svc.Auction.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	items := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		items = append(items, NewAuctionResponse(a))
	}
	httpx.JSON(w, http.StatusOK, ListAuctionsResponse{
		Items:  items,
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}
