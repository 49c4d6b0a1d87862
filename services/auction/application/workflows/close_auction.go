// Package workflows schedules auction closes on Temporal. The sweeper remains
// the fallback, so a missing or failed workflow only delays a close.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// pollInterval is how long the workflow waits when an auction is past its
// deadline but not yet active, leaving activation to the sweeper.
const pollInterval = time.Minute

// WorkflowID is the Temporal workflow id for an auction's close workflow.
func WorkflowID(auctionID uuid.UUID) string {
	return "auction-close-" + auctionID.String()
}

// Snapshot is the slice of auction state the workflow needs.
type Snapshot struct {
	Status   string    `json:"status"`
	EndTime  time.Time `json:"end_time"`
	WinnerID string    `json:"winner_id,omitempty"`
}

func (s Snapshot) terminal() bool {
	st, ok := models.ParseStatus(s.Status)
	return !ok || st.IsTerminal()
}

// Lifecycle is the part of the auction service the activities drive.
type Lifecycle interface {
	// Load reads the auction from the store, bypassing caches.
	Load(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	// CloseIfDue ends the auction if its deadline has passed and reports whether it did.
	CloseIfDue(ctx context.Context, id uuid.UUID) (*models.Auction, bool, error)
}

// Activities are the Temporal activities of CloseAuctionWorkflow.
type Activities struct {
	svc Lifecycle
}

// NewActivities returns activities backed by svc.
func NewActivities(svc Lifecycle) *Activities {
	return &Activities{svc: svc}
}

// LoadDeadline returns the auction's current status and end time. A deleted
// auction reports as cancelled so the workflow stops.
func (a *Activities) LoadDeadline(ctx context.Context, auctionID string) (Snapshot, error) {
	id, err := uuid.Parse(auctionID)
	if err != nil {
		return Snapshot{}, temporal.NewNonRetryableApplicationError("invalid auction id", "InvalidArgument", err)
	}
	auction, err := a.svc.Load(ctx, id)
	if errors.Is(err, auctiondomain.ErrAuctionNotFound) {
		return Snapshot{Status: models.StatusCancelled.String()}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(auction), nil
}

// EndAuction closes the auction when due. An auction closed elsewhere, or
// extended past now, is reported as-is for the workflow to decide.
func (a *Activities) EndAuction(ctx context.Context, auctionID string) (Snapshot, error) {
	id, err := uuid.Parse(auctionID)
	if err != nil {
		return Snapshot{}, temporal.NewNonRetryableApplicationError("invalid auction id", "InvalidArgument", err)
	}
	auction, _, err := a.svc.CloseIfDue(ctx, id)
	switch {
	case errors.Is(err, auctiondomain.ErrAuctionNotFound):
		return Snapshot{Status: models.StatusCancelled.String()}, nil
	case errors.Is(err, auctiondomain.ErrAuctionNotActive):
		return a.LoadDeadline(ctx, auctionID)
	case err != nil:
		return Snapshot{}, err
	}
	return snapshotOf(auction), nil
}

func snapshotOf(a *models.Auction) Snapshot {
	return Snapshot{Status: a.Status.String(), EndTime: a.EndTime, WinnerID: a.WinnerID}
}

// CloseAuctionWorkflow sleeps until the auction's deadline and ends it,
// re-reading the deadline after every wake because bids may extend it.
func CloseAuctionWorkflow(ctx workflow.Context, auctionID string) (Snapshot, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})
	log := workflow.GetLogger(ctx)

	var acts *Activities
	for {
		var snap Snapshot
		if err := workflow.ExecuteActivity(ctx, acts.LoadDeadline, auctionID).Get(ctx, &snap); err != nil {
			return Snapshot{}, err
		}
		if snap.terminal() {
			return snap, nil
		}

		if wait := snap.EndTime.Sub(workflow.Now(ctx)); wait > 0 {
			log.Debug("waiting for auction deadline", "auction_id", auctionID, "wait", wait)
			if err := workflow.Sleep(ctx, wait); err != nil {
				return Snapshot{}, err
			}
			continue
		}

		if snap.Status == models.StatusScheduled.String() {
			if err := workflow.Sleep(ctx, pollInterval); err != nil {
				return Snapshot{}, err
			}
			continue
		}

		if err := workflow.ExecuteActivity(ctx, acts.EndAuction, auctionID).Get(ctx, &snap); err != nil {
			return Snapshot{}, err
		}
		if snap.terminal() {
			log.Info("auction closed", "auction_id", auctionID, "status", snap.Status, "winner_id", snap.WinnerID)
			return snap, nil
		}
		if !snap.EndTime.After(workflow.Now(ctx)) {
			// Store clock is behind ours; back off instead of spinning.
			if err := workflow.Sleep(ctx, time.Second); err != nil {
				return Snapshot{}, err
			}
		}
	}
}

// Register adds the workflow and activities to a Temporal worker.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflow(CloseAuctionWorkflow)
	w.RegisterActivity(acts)
}

// Scheduler starts a CloseAuctionWorkflow for new auctions.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler returns a Scheduler starting workflows on taskQueue.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// ScheduleClose starts the close workflow for auctionID.
func (s *Scheduler) ScheduleClose(ctx context.Context, auctionID uuid.UUID) error {
	_, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowID(auctionID),
		TaskQueue: s.taskQueue,
	}, CloseAuctionWorkflow, auctionID.String())
	if err != nil {
		return fmt.Errorf("start close workflow for %s: %w", auctionID, err)
	}
	return nil
}
