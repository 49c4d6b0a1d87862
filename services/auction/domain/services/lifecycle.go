package services

import (
	"fmt"
	"time"

	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// Outcome classifies how an auction closed.
type Outcome string

const (
	OutcomeSold          Outcome = "sold"
	OutcomeReserveNotMet Outcome = "reserve_not_met"
	OutcomeNoBids        Outcome = "no_bids"
)

// EndAuction closes an active auction and determines the winner.
// A second call fails with ErrAuctionNotActive.
func EndAuction(a *models.Auction) (Outcome, error) {
	if a.Status != models.StatusActive {
		return "", fmt.Errorf("%w: auction is %s", domain.ErrAuctionNotActive, a.Status)
	}
	a.Status = models.StatusEnded

	bid, ok := winningBid(a)
	if !ok {
		return OutcomeNoBids, nil
	}
	if a.ReservePrice.Valid && a.CurrentPrice.LessThan(a.ReservePrice.Decimal) {
		return OutcomeReserveNotMet, nil
	}
	a.WinnerID = bid.BidderID
	return OutcomeSold, nil
}

// winningBid applies the last-bid-wins policy: the most recently accepted bid
// is the winner. Acceptance guarantees it is also the highest.
func winningBid(a *models.Auction) (models.Bid, bool) {
	return a.LastBid()
}

// ActivateAuction opens a scheduled auction once its start time is reached.
func ActivateAuction(a *models.Auction, now time.Time) error {
	if a.Status != models.StatusScheduled {
		return fmt.Errorf("%w: auction is %s", domain.ErrAuctionNotScheduled, a.Status)
	}
	if now.Before(a.StartTime) {
		return fmt.Errorf("%w: starts at %s", domain.ErrAuctionNotStarted, a.StartTime.Format(time.RFC3339))
	}
	a.Status = models.StatusActive
	return nil
}

// CancelAuction moves a scheduled or active auction to cancelled.
func CancelAuction(a *models.Auction) error {
	if a.Status.IsTerminal() {
		return fmt.Errorf("%w: auction is %s", domain.ErrInvalidTransition, a.Status)
	}
	a.Status = models.StatusCancelled
	return nil
}

// IsDueForClose reports whether the sweep should end the auction.
func IsDueForClose(a *models.Auction, now time.Time) bool {
	return a.Status == models.StatusActive && !now.Before(a.EndTime)
}

// IsDueForStart reports whether the sweep should activate the auction.
func IsDueForStart(a *models.Auction, now time.Time) bool {
	return a.Status == models.StatusScheduled && !now.Before(a.StartTime)
}
