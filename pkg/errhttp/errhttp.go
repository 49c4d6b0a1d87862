// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add an entry to mappings for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/ghuser/auctionhouse/pkg/httpx"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error" example:"bid must be higher than current price: current price is 150.00"`
	Code  string `json:"code" example:"bid_too_low"`
} // @name ErrorResponse

type mapping struct {
	err    error
	status int
	code   string
}

// Checked in order; the first errors.Is match wins.
var mappings = []mapping{
	{auctiondomain.ErrAuctionNotFound, http.StatusNotFound, "auction_not_found"},
	{auctiondomain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{auctiondomain.ErrAuctionNotActive, http.StatusConflict, "auction_not_active"},
	{auctiondomain.ErrAuctionNotScheduled, http.StatusConflict, "auction_not_scheduled"},
	{auctiondomain.ErrAuctionNotStarted, http.StatusConflict, "auction_not_started"},
	{auctiondomain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{auctiondomain.ErrAuctionHasBids, http.StatusConflict, "auction_has_bids"},
	{auctiondomain.ErrBidTooLow, http.StatusUnprocessableEntity, "bid_too_low"},
	{auctiondomain.ErrBelowMinIncrement, http.StatusUnprocessableEntity, "below_min_increment"},
	{auctiondomain.ErrInvalidAuction, http.StatusUnprocessableEntity, "invalid_auction"},
	{auctiondomain.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
	{auctiondomain.ErrNotProductOwner, http.StatusForbidden, "not_product_owner"},
	{auctiondomain.ErrNotSeller, http.StatusForbidden, "not_seller"},
	{auctiondomain.ErrSelfBid, http.StatusForbidden, "self_bid"},
	{auctiondomain.ErrPersistence, http.StatusInternalServerError, "persistence_failure"},
}

var maskInternal atomic.Bool

// MaskInternalErrors replaces 5xx error messages with the status text.
// cmd/api enables it in production.
func MaskInternalErrors(on bool) {
	maskInternal.Store(on)
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	httpx.JSON(w, status, ErrorResponse{
		Error: httpx.SafeError(err, status, maskInternal.Load()),
		Code:  code,
	})
}

// Classify returns the HTTP status and stable error code for err.
func Classify(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}
