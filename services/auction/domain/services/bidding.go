// Package services contains stateless domain services for the auction bounded context.
// Each operation mutates the *models.Auction it is given; repositories pass a
// working copy and commit it only when the operation succeeds.
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// BidResult describes an accepted bid.
type BidResult struct {
	Bid             models.Bid
	Extended        bool
	PreviousEndTime time.Time
}

// PlaceBid validates amount against the auction and applies it.
//
// Checks run in order and the first failure is returned:
//  1. status must be active (ErrAuctionNotActive)
//  2. amount must be a valid money value (ErrInvalidAmount)
//  3. amount must exceed the current price (ErrBidTooLow)
//  4. amount must be at least current price + increment (ErrBelowMinIncrement)
//
// An accepted bid landing inside the auto-extend window moves the close to
// now + window. The bidder is not compared with the seller here.
func PlaceBid(a *models.Auction, bidderID string, amount decimal.Decimal, now time.Time) (BidResult, error) {
	if a.Status != models.StatusActive {
		return BidResult{}, fmt.Errorf("%w: auction is %s", domain.ErrAuctionNotActive, a.Status)
	}
	if err := ValidateAmount(amount); err != nil {
		return BidResult{}, err
	}
	if !amount.GreaterThan(a.CurrentPrice) {
		return BidResult{}, fmt.Errorf("%w: current price is %s", domain.ErrBidTooLow, a.CurrentPrice.StringFixed(2))
	}
	if amount.LessThan(a.CurrentPrice.Add(a.MinBidIncrement)) {
		return BidResult{}, fmt.Errorf("%w: minimum increment is %s", domain.ErrBelowMinIncrement, a.MinBidIncrement.StringFixed(2))
	}

	now = now.UTC()
	if last, ok := a.LastBid(); ok && now.Before(last.Time) {
		now = last.Time
	}

	bid := models.Bid{
		ID:       uuid.New(),
		BidderID: bidderID,
		Amount:   amount,
		Time:     now,
	}
	a.Bids = append(a.Bids, bid)
	a.CurrentPrice = amount

	res := BidResult{Bid: bid, PreviousEndTime: a.EndTime}
	window := a.AutoExtendWindow()
	if a.EndTime.Sub(now) < window {
		a.EndTime = now.Add(window)
		a.IsExtended = true
		res.Extended = true
	}
	return res, nil
}
