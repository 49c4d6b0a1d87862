package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgcache "github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/pkg/logger"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	domainevents "github.com/ghuser/auctionhouse/services/auction/domain/events"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	domainsvcs "github.com/ghuser/auctionhouse/services/auction/domain/services"
)

var tracer = otel.Tracer("github.com/ghuser/auctionhouse/services/auction")

// CloseScheduler arranges for an auction to be ended at its deadline.
type CloseScheduler interface {
	ScheduleClose(ctx context.Context, auctionID uuid.UUID) error
}

// CreateAuctionInput carries the seller-supplied fields of a new auction.
type CreateAuctionInput struct {
	ProductID         uuid.UUID
	StartTime         time.Time
	EndTime           time.Time
	StartingPrice     decimal.Decimal
	MinBidIncrement   decimal.NullDecimal
	ReservePrice      decimal.NullDecimal
	BuyNowPrice       decimal.NullDecimal
	AutoExtendMinutes int
}

// AuctionService orchestrates the auction lifecycle. Every state change runs
// through repositories.AuctionRepository.Mutate so bids, closes and the
// sweeper are serialized per auction. Event publishing is handled by the
// repository layer. Reads are served from Redis cache when available.
type AuctionService struct {
	repo      repositories.AuctionRepository
	catalog   repositories.ProductCatalog
	cache     *pkgcache.AuctionCache // nil disables caching
	scheduler CloseScheduler         // nil leaves closing to the sweeper
	metrics   *Metrics
	log       logger.Logger
	now       func() time.Time
}

// ServiceOption configures an AuctionService.
type ServiceOption func(*AuctionService)

// WithCache enables the read-through Redis cache.
func WithCache(c *pkgcache.AuctionCache) ServiceOption {
	return func(s *AuctionService) { s.cache = c }
}

// WithScheduler schedules a close workflow for every created auction.
func WithScheduler(sch CloseScheduler) ServiceOption {
	return func(s *AuctionService) { s.scheduler = sch }
}

// WithMetrics records bid and close counters.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *AuctionService) { s.metrics = m }
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *AuctionService) { s.now = now }
}

// NewAuctionService returns an AuctionService over the given repository and catalog.
func NewAuctionService(repo repositories.AuctionRepository, catalog repositories.ProductCatalog, log logger.Logger, opts ...ServiceOption) *AuctionService {
	s := &AuctionService{repo: repo, catalog: catalog, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new auction for a product owned by sellerID.
// The repository publishes AuctionCreatedEvent.
func (s *AuctionService) Create(ctx context.Context, sellerID string, in CreateAuctionInput) (*models.Auction, error) {
	product, err := s.catalog.Resolve(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("resolve product: %w", err)
	}
	if product.SellerID != sellerID {
		return nil, fmt.Errorf("%w: product %s", auctiondomain.ErrNotProductOwner, product.ID)
	}

	now := s.now()
	a := models.NewAuction(models.NewAuctionParams{
		ProductID:         product.ID,
		SellerID:          product.SellerID,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		StartingPrice:     in.StartingPrice,
		MinBidIncrement:   in.MinBidIncrement,
		ReservePrice:      in.ReservePrice,
		BuyNowPrice:       in.BuyNowPrice,
		AutoExtendMinutes: in.AutoExtendMinutes,
	}, now)
	if err := domainsvcs.ValidateAuctionForCreation(a, now); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save auction: %w", err)
	}

	if s.scheduler != nil {
		// The sweeper still closes the auction if scheduling fails.
		if err := s.scheduler.ScheduleClose(ctx, a.ID); err != nil {
			s.log.WarnContext(ctx, "schedule close failed", "auction_id", a.ID, "error", err)
		}
	}
	s.warmCache(a)
	return a, nil
}

// GetByID retrieves an auction using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query the repository.
//  3. Asynchronously warm the cache with the repository result.
func (s *AuctionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			a, convErr := fromCached(cached)
			if convErr == nil {
				return a, nil
			}
			s.log.WarnContext(ctx, "discarding unreadable cache entry", "auction_id", id, "error", convErr)
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "auction cache read failed", "auction_id", id, "error", err)
		}
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get auction: %w", err)
	}
	s.warmCache(a)
	return a, nil
}

// List returns a page of auctions plus the total count.
func (s *AuctionService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Auction, int, error) {
	auctions, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, total, nil
}

// Bids returns the bid history of an auction in acceptance order.
func (s *AuctionService) Bids(ctx context.Context, id uuid.UUID) ([]models.Bid, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Bids, nil
}

// PlaceBid validates and records a bid under the auction's exclusion and
// returns the committed auction.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidderID string, amount decimal.Decimal) (*models.Auction, error) {
	ctx, span := tracer.Start(ctx, "AuctionService.PlaceBid", trace.WithAttributes(
		attribute.String("auction.id", auctionID.String()),
	))
	defer span.End()

	a, err := s.repo.Mutate(ctx, auctionID, func(a *models.Auction) ([]domainevents.Event, error) {
		res, err := domainsvcs.PlaceBid(a, bidderID, amount, s.now())
		if err != nil {
			return nil, err
		}
		return []domainevents.Event{domainevents.NewBidPlaced(a, res.Bid, res.Extended)}, nil
	})
	if err != nil {
		s.metrics.bidRejected(ctx, rejectReason(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("place bid: %w", err)
	}

	s.metrics.bidAccepted(ctx)
	span.SetAttributes(
		attribute.String("bid.amount", amount.String()),
		attribute.Bool("auction.extended", a.IsExtended),
		attribute.Int64("auction.version", a.Version),
	)
	s.warmCache(a)
	return a, nil
}

// EndAuction closes an active auction and determines the winner. A second
// call fails with ErrAuctionNotActive.
func (s *AuctionService) EndAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	return s.end(ctx, auctionID, nil)
}

// errNotDue aborts a CloseIfDue mutation whose deadline moved.
var errNotDue = errors.New("auction not yet due")

// CloseIfDue ends the auction only if its current deadline has passed, so a
// bid that extended the auction after it was found due is honored. It reports
// whether the auction was ended; when not, the current auction is returned.
func (s *AuctionService) CloseIfDue(ctx context.Context, auctionID uuid.UUID) (*models.Auction, bool, error) {
	a, err := s.end(ctx, auctionID, func(a *models.Auction) error {
		if a.Status == models.StatusActive && !domainsvcs.IsDueForClose(a, s.now()) {
			return errNotDue
		}
		return nil
	})
	if errors.Is(err, errNotDue) {
		current, err := s.Load(ctx, auctionID)
		return current, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// Load reads the auction straight from the repository, bypassing the cache.
func (s *AuctionService) Load(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load auction: %w", err)
	}
	return a, nil
}

// CloseBySeller ends the auction early on behalf of its seller.
func (s *AuctionService) CloseBySeller(ctx context.Context, auctionID uuid.UUID, sellerID string) (*models.Auction, error) {
	return s.end(ctx, auctionID, sellerGuard(sellerID))
}

func (s *AuctionService) end(ctx context.Context, auctionID uuid.UUID, guard func(*models.Auction) error) (*models.Auction, error) {
	ctx, span := tracer.Start(ctx, "AuctionService.EndAuction", trace.WithAttributes(
		attribute.String("auction.id", auctionID.String()),
	))
	defer span.End()

	var outcome domainsvcs.Outcome
	a, err := s.repo.Mutate(ctx, auctionID, func(a *models.Auction) ([]domainevents.Event, error) {
		if guard != nil {
			if err := guard(a); err != nil {
				return nil, err
			}
		}
		o, err := domainsvcs.EndAuction(a)
		if err != nil {
			return nil, err
		}
		outcome = o
		return []domainevents.Event{domainevents.NewAuctionEnded(a, string(o), s.now())}, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("end auction: %w", err)
	}

	s.metrics.auctionClosed(ctx, string(outcome))
	span.SetAttributes(attribute.String("auction.outcome", string(outcome)))
	s.log.InfoContext(ctx, "auction ended",
		"auction_id", a.ID,
		"outcome", outcome,
		"winner_id", a.WinnerID,
		"final_price", a.CurrentPrice.String(),
	)
	s.warmCache(a)
	return a, nil
}

// Activate opens a scheduled auction whose start time has been reached.
func (s *AuctionService) Activate(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	a, err := s.repo.Mutate(ctx, auctionID, func(a *models.Auction) ([]domainevents.Event, error) {
		now := s.now()
		if err := domainsvcs.ActivateAuction(a, now); err != nil {
			return nil, err
		}
		return []domainevents.Event{domainevents.NewAuctionStarted(a, now)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("activate auction: %w", err)
	}
	s.warmCache(a)
	return a, nil
}

// Cancel moves a scheduled or active auction to cancelled on behalf of its seller.
func (s *AuctionService) Cancel(ctx context.Context, auctionID uuid.UUID, sellerID string) (*models.Auction, error) {
	a, err := s.repo.Mutate(ctx, auctionID, func(a *models.Auction) ([]domainevents.Event, error) {
		if err := sellerGuard(sellerID)(a); err != nil {
			return nil, err
		}
		previous := a.Status
		if err := domainsvcs.CancelAuction(a); err != nil {
			return nil, err
		}
		return []domainevents.Event{domainevents.NewAuctionCancelled(a, previous, s.now())}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel auction: %w", err)
	}
	s.warmCache(a)
	return a, nil
}

// Delete removes an auction on behalf of its seller. Active auctions that
// already have bids cannot be deleted.
func (s *AuctionService) Delete(ctx context.Context, auctionID uuid.UUID, sellerID string) error {
	err := s.repo.Delete(ctx, auctionID, func(a *models.Auction) error {
		if err := sellerGuard(sellerID)(a); err != nil {
			return err
		}
		if a.Status == models.StatusActive && len(a.Bids) > 0 {
			return fmt.Errorf("%w: %d bids", auctiondomain.ErrAuctionHasBids, len(a.Bids))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, auctionID); err != nil {
			s.log.WarnContext(ctx, "auction cache delete failed", "auction_id", auctionID, "error", err)
		}
	}
	return nil
}

// RefreshCache reloads the auction from the repository into the cache.
// Deleted auctions are evicted. No-op without a cache.
func (s *AuctionService) RefreshCache(ctx context.Context, auctionID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	a, err := s.repo.GetByID(ctx, auctionID)
	if errors.Is(err, auctiondomain.ErrAuctionNotFound) {
		return s.cache.Delete(ctx, auctionID)
	}
	if err != nil {
		return fmt.Errorf("load auction: %w", err)
	}
	if _, err := s.cache.Set(ctx, toCached(a)); err != nil {
		return fmt.Errorf("cache auction: %w", err)
	}
	return nil
}

// warmCache stores a snapshot in the background. The version guard discards
// it if a newer snapshot is already cached.
func (s *AuctionService) warmCache(a *models.Auction) {
	if s.cache == nil {
		return
	}
	snapshot := toCached(a)
	go func() {
		if _, err := s.cache.Set(context.Background(), snapshot); err != nil {
			s.log.Warn("auction cache warm failed", "auction_id", snapshot.ID, "error", err)
		}
	}()
}

func sellerGuard(sellerID string) func(*models.Auction) error {
	return func(a *models.Auction) error {
		if a.SellerID != sellerID {
			return fmt.Errorf("%w: auction %s", auctiondomain.ErrNotSeller, a.ID)
		}
		return nil
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auctiondomain.ErrAuctionNotActive):
		return "not_active"
	case errors.Is(err, auctiondomain.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, auctiondomain.ErrBelowMinIncrement):
		return "below_increment"
	case errors.Is(err, auctiondomain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, auctiondomain.ErrAuctionNotFound):
		return "not_found"
	default:
		return "error"
	}
}
