// Package memory implements the auction repositories in process memory.
// State is lost on restart; use it for development, tests and demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/logger"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	domainevents "github.com/ghuser/auctionhouse/services/auction/domain/events"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/messaging"
)

// Publisher is satisfied by *events.EventBus.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// CommitHook runs with the working copy just before it replaces the stored
// auction. A non-nil error aborts the commit as a persistence failure.
type CommitHook func(a *models.Auction) error

// Option configures an AuctionRepository.
type Option func(*AuctionRepository)

// WithClock overrides the clock used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *AuctionRepository) { r.now = now }
}

// WithCommitHook installs a hook that can veto commits.
func WithCommitHook(h CommitHook) Option {
	return func(r *AuctionRepository) { r.hook = h }
}

// slot holds one auction behind its own lock so different auctions never contend.
type slot struct {
	mu      sync.Mutex
	auction *models.Auction
	deleted bool
}

// AuctionRepository implements repositories.AuctionRepository with a map of
// per-auction slots. Mutations run on a clone that is swapped in on success.
type AuctionRepository struct {
	mu    sync.RWMutex // guards slots
	slots map[uuid.UUID]*slot

	pub  Publisher // may be nil
	log  logger.Logger
	now  func() time.Time
	hook CommitHook
}

var _ repositories.AuctionRepository = (*AuctionRepository)(nil)

// NewAuctionRepository returns an empty repository publishing committed events to pub.
func NewAuctionRepository(pub Publisher, log logger.Logger, opts ...Option) *AuctionRepository {
	r := &AuctionRepository{
		slots: make(map[uuid.UUID]*slot),
		pub:   pub,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a copy of a and publishes AuctionCreatedEvent.
func (r *AuctionRepository) Create(ctx context.Context, a *models.Auction) error {
	a.Version = 1
	if r.hook != nil {
		if err := r.hook(a); err != nil {
			return fmt.Errorf("%w: create auction: %w", auctiondomain.ErrPersistence, err)
		}
	}

	s := &slot{auction: a.Clone()}
	s.mu.Lock()
	defer s.mu.Unlock()

	r.mu.Lock()
	if _, exists := r.slots[a.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: auction %s already exists", auctiondomain.ErrPersistence, a.ID)
	}
	r.slots[a.ID] = s
	r.mu.Unlock()

	r.publish(ctx, []domainevents.Event{domainevents.NewAuctionCreated(a)})
	return nil
}

// GetByID returns a copy of the stored auction.
func (r *AuctionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Auction, error) {
	s, ok := r.slot(id)
	if !ok {
		return nil, notFound(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return nil, notFound(id)
	}
	return s.auction.Clone(), nil
}

// List returns auctions newest first, filtered by status.
func (r *AuctionRepository) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Auction, int, error) {
	all := r.snapshot(func(a *models.Auction) bool {
		return opts.Status == "" || a.Status == opts.Status
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	total := len(all)
	start := min(max(opts.Offset, 0), total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}
	return all[start:end], total, nil
}

// Mutate runs fn on a clone under the auction's lock and swaps the clone in
// when fn and the commit hook succeed. Events are published after the swap,
// still under the lock, so subscribers see them in version order.
func (r *AuctionRepository) Mutate(ctx context.Context, id uuid.UUID, fn repositories.MutateFunc) (*models.Auction, error) {
	s, ok := r.slot(id)
	if !ok {
		return nil, notFound(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return nil, notFound(id)
	}

	working := s.auction.Clone()
	working.Version++
	evs, err := fn(working)
	if err != nil {
		return nil, err
	}
	working.UpdatedAt = r.now().UTC()

	if r.hook != nil {
		if err := r.hook(working); err != nil {
			return nil, fmt.Errorf("%w: commit auction %s: %w", auctiondomain.ErrPersistence, id, err)
		}
	}
	s.auction = working

	r.publish(ctx, evs)
	return working.Clone(), nil
}

// Delete removes the auction once guard allows it. Concurrent Mutate calls
// waiting on the lock observe ErrAuctionNotFound.
func (r *AuctionRepository) Delete(_ context.Context, id uuid.UUID, guard repositories.DeleteGuard) error {
	s, ok := r.slot(id)
	if !ok {
		return notFound(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return notFound(id)
	}
	if guard != nil {
		if err := guard(s.auction.Clone()); err != nil {
			return err
		}
	}
	s.deleted = true

	r.mu.Lock()
	delete(r.slots, id)
	r.mu.Unlock()
	return nil
}

// FindDueForClose returns active auctions whose end time has passed, earliest first.
func (r *AuctionRepository) FindDueForClose(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	due := r.snapshot(func(a *models.Auction) bool {
		return a.Status == models.StatusActive && !now.Before(a.EndTime)
	})
	sort.Slice(due, func(i, j int) bool { return due[i].EndTime.Before(due[j].EndTime) })
	return ids(due, limit), nil
}

// FindDueForStart returns scheduled auctions whose start time has passed, earliest first.
func (r *AuctionRepository) FindDueForStart(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	due := r.snapshot(func(a *models.Auction) bool {
		return a.Status == models.StatusScheduled && !now.Before(a.StartTime)
	})
	sort.Slice(due, func(i, j int) bool { return due[i].StartTime.Before(due[j].StartTime) })
	return ids(due, limit), nil
}

func (r *AuctionRepository) slot(id uuid.UUID) (*slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	return s, ok
}

// snapshot clones every live auction matching keep.
func (r *AuctionRepository) snapshot(keep func(*models.Auction) bool) []*models.Auction {
	r.mu.RLock()
	slots := make([]*slot, 0, len(r.slots))
	for _, s := range r.slots {
		slots = append(slots, s)
	}
	r.mu.RUnlock()

	out := make([]*models.Auction, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		if !s.deleted && keep(s.auction) {
			out = append(out, s.auction.Clone())
		}
		s.mu.Unlock()
	}
	return out
}

// publish delivers committed events. The state change already happened,
// so failures are logged rather than returned.
func (r *AuctionRepository) publish(ctx context.Context, evs []domainevents.Event) {
	if r.pub == nil {
		return
	}
	for _, ev := range evs {
		msg, err := messaging.NewMessage(ctx, ev)
		if err == nil {
			err = r.pub.Publish(ctx, ev.Topic(), msg)
		}
		if err != nil {
			r.log.ErrorContext(ctx, "memory store: publish event failed",
				"topic", ev.Topic(),
				"auction_id", ev.Header().AuctionID,
				"error", err,
			)
		}
	}
}

func ids(as []*models.Auction, limit int) []uuid.UUID {
	if limit > 0 && len(as) > limit {
		as = as[:limit]
	}
	out := make([]uuid.UUID, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("%w: %s", auctiondomain.ErrAuctionNotFound, id)
}
