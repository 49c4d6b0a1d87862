package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain/events"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// QueryOpts contains filter and pagination parameters for list queries.
type QueryOpts struct {
	Status models.Status // Empty matches every status
	Limit  int           // Maximum number of records to return
	Offset int           // Number of records to skip
}

// MutateFunc applies a change to a working copy of an auction and returns the
// events to publish with it. Returning an error discards the working copy.
// The copy's Version has already been bumped when the func runs.
type MutateFunc func(a *models.Auction) ([]events.Event, error)

// DeleteGuard inspects the current auction before it is deleted.
type DeleteGuard func(a *models.Auction) error

// AuctionRepository is the persistence interface for the Auction aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Implementations wrap storage failures in domain.ErrPersistence and return
// domain.ErrAuctionNotFound for unknown ids.
type AuctionRepository interface {
	// Create persists a new auction at Version 1 and publishes AuctionCreatedEvent with it.
	Create(ctx context.Context, a *models.Auction) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)

	// List returns a page of auctions, newest first, and the total count
	// matching the filter (ignoring pagination).
	List(ctx context.Context, opts QueryOpts) ([]*models.Auction, int, error)

	// Mutate runs fn under exclusive access to the auction. When fn succeeds
	// the copy and its events are committed together and the committed
	// auction is returned; otherwise nothing changes.
	Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*models.Auction, error)

	// Delete removes an auction and its bids. A non-nil guard runs under the
	// same exclusion as Mutate and vetoes the delete by returning an error.
	Delete(ctx context.Context, id uuid.UUID, guard DeleteGuard) error

	// FindDueForClose returns ids of active auctions whose end time is at or before now.
	FindDueForClose(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)

	// FindDueForStart returns ids of scheduled auctions whose start time is at or before now.
	FindDueForStart(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}
