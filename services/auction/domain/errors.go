package domain

import "errors"

// Sentinel errors for the auction domain. Use errors.Is() to check these.
// Call sites wrap them with detail, e.g. fmt.Errorf("%w: current price is 150", ErrBidTooLow).
var (
	// ErrAuctionNotFound indicates the referenced auction does not exist.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrAuctionNotActive indicates the operation requires an active auction.
	ErrAuctionNotActive = errors.New("auction is not active")

	// ErrBidTooLow indicates the bid does not exceed the current price.
	ErrBidTooLow = errors.New("bid must be higher than current price")

	// ErrBelowMinIncrement indicates the bid exceeds the current price by less than the increment.
	ErrBelowMinIncrement = errors.New("bid is below the minimum increment")

	// ErrPersistence indicates the store could not read or commit the auction.
	ErrPersistence = errors.New("persistence failure")

	// ErrAuctionNotScheduled indicates activation was attempted on a non-scheduled auction.
	ErrAuctionNotScheduled = errors.New("auction is not scheduled")

	// ErrAuctionNotStarted indicates activation was attempted before the start time.
	ErrAuctionNotStarted = errors.New("auction start time not reached")

	// ErrInvalidTransition indicates a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid auction status transition")

	// ErrInvalidAmount indicates a money value with more than two decimal
	// places or too many integer digits.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAuction indicates the auction fields violate creation rules.
	ErrInvalidAuction = errors.New("invalid auction")

	// ErrProductNotFound indicates the referenced catalog product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotProductOwner indicates the caller does not own the product being auctioned.
	ErrNotProductOwner = errors.New("product does not belong to caller")

	// ErrNotSeller indicates the caller is not the seller of the auction.
	ErrNotSeller = errors.New("caller is not the seller")

	// ErrSelfBid indicates a seller tried to bid on their own auction.
	ErrSelfBid = errors.New("seller cannot bid on own auction")

	// ErrAuctionHasBids indicates an active auction with bids cannot be deleted.
	ErrAuctionHasBids = errors.New("cannot delete an active auction with bids")
)
