package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/pkg/events"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	domainevents "github.com/ghuser/auctionhouse/services/auction/domain/events"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/messaging"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres/db"
)

// AuctionRepository implements repositories.AuctionRepository against PostgreSQL.
// Mutations lock the auction row with SELECT ... FOR UPDATE and publish their
// events through the outbox in the same transaction.
type AuctionRepository struct {
	db  *database.Database
	bus *events.EventBus
	now func() time.Time
}

var _ repositories.AuctionRepository = (*AuctionRepository)(nil)

// NewAuctionRepository returns an AuctionRepository backed by the given connection pool
// and event bus. A nil bus disables event publishing.
func NewAuctionRepository(database *database.Database, bus *events.EventBus) *AuctionRepository {
	return &AuctionRepository{db: database, bus: bus, now: time.Now}
}

// Create inserts the auction and publishes AuctionCreatedEvent within the same transaction.
func (r *AuctionRepository) Create(ctx context.Context, a *models.Auction) error {
	a.Version = 1
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertAuction(ctx, insertParams(a)); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("%w: %s", auctiondomain.ErrProductNotFound, a.ProductID)
			}
			return fmt.Errorf("insert auction: %w", err)
		}
		if err := insertBids(ctx, q, a, 0); err != nil {
			return err
		}
		return r.publish(ctx, tx, []domainevents.Event{domainevents.NewAuctionCreated(a)})
	})
	return persistenceErr(err)
}

// GetByID loads the auction and its bids. Returns ErrAuctionNotFound if not found.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	q := db.New(r.db.DB())
	row, err := q.GetAuctionByID(ctx, id)
	if err != nil {
		return nil, persistenceErr(notFoundOr(err, id, "query auction"))
	}
	bids, err := q.ListBidsByAuction(ctx, id)
	if err != nil {
		return nil, persistenceErr(fmt.Errorf("query bids: %w", err))
	}
	return rowToAuction(row, bids), nil
}

// List returns a page of auctions with their bids, newest first, plus the total count.
func (r *AuctionRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Auction, int, error) {
	q := db.New(r.db.DB())
	status := string(opts.Status)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.ListAuctions(ctx, db.ListAuctionsParams{
		Status:    status,
		RowLimit:  int32(limit),
		RowOffset: int32(max(opts.Offset, 0)),
	})
	if err != nil {
		return nil, 0, persistenceErr(fmt.Errorf("query auctions: %w", err))
	}

	total, err := q.CountAuctions(ctx, status)
	if err != nil {
		return nil, 0, persistenceErr(fmt.Errorf("count auctions: %w", err))
	}

	if len(rows) == 0 {
		return []*models.Auction{}, int(total), nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	bidRows, err := q.ListBidsByAuctions(ctx, ids)
	if err != nil {
		return nil, 0, persistenceErr(fmt.Errorf("query bids: %w", err))
	}
	byAuction := make(map[uuid.UUID][]db.AuctionBid, len(rows))
	for _, b := range bidRows {
		byAuction[b.AuctionID] = append(byAuction[b.AuctionID], b)
	}

	out := make([]*models.Auction, len(rows))
	for i, row := range rows {
		out[i] = rowToAuction(row, byAuction[row.ID])
	}
	return out, int(total), nil
}

// Mutate locks the auction row, applies fn and writes the result, new bids and
// fn's events in one transaction. An error from fn rolls back and is returned
// unwrapped; storage errors are wrapped in ErrPersistence.
func (r *AuctionRepository) Mutate(ctx context.Context, id uuid.UUID, fn repositories.MutateFunc) (*models.Auction, error) {
	var (
		result *models.Auction
		fnErr  error
	)
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		row, err := q.GetAuctionForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "lock auction")
		}
		bids, err := q.ListBidsByAuction(ctx, id)
		if err != nil {
			return fmt.Errorf("query bids: %w", err)
		}

		working := rowToAuction(row, bids)
		prevVersion := working.Version
		persisted := len(working.Bids)
		working.Version++

		evs, err := fn(working)
		if err != nil {
			fnErr = err
			return err
		}
		working.UpdatedAt = r.now().UTC()

		n, err := q.UpdateAuction(ctx, db.UpdateAuctionParams{
			ID:           working.ID,
			Version:      prevVersion,
			EndTime:      working.EndTime,
			CurrentPrice: working.CurrentPrice,
			Status:       string(working.Status),
			WinnerID:     nullString(working.WinnerID),
			IsExtended:   working.IsExtended,
			Version_2:    working.Version,
			UpdatedAt:    working.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("update auction: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("update auction %s: version %d no longer current", id, prevVersion)
		}
		if err := insertBids(ctx, q, working, persisted); err != nil {
			return err
		}
		if err := r.publish(ctx, tx, evs); err != nil {
			return err
		}
		result = working
		return nil
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return result, nil
}

// Delete locks the auction row, consults guard and removes it; bids cascade.
func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID, guard repositories.DeleteGuard) error {
	var guardErr error
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		row, err := q.GetAuctionForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "lock auction")
		}
		if guard != nil {
			bids, err := q.ListBidsByAuction(ctx, id)
			if err != nil {
				return fmt.Errorf("query bids: %w", err)
			}
			if err := guard(rowToAuction(row, bids)); err != nil {
				guardErr = err
				return err
			}
		}
		if _, err := q.DeleteAuction(ctx, id); err != nil {
			return fmt.Errorf("delete auction: %w", err)
		}
		return nil
	})
	if guardErr != nil {
		return guardErr
	}
	return persistenceErr(err)
}

// FindDueForClose returns ids of active auctions whose end time has passed.
func (r *AuctionRepository) FindDueForClose(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	ids, err := db.New(r.db.DB()).FindAuctionsDueForClose(ctx, db.FindAuctionsDueForCloseParams{
		EndTime: now,
		Limit:   int32(limit),
	})
	if err != nil {
		return nil, persistenceErr(fmt.Errorf("query due for close: %w", err))
	}
	return ids, nil
}

// FindDueForStart returns ids of scheduled auctions whose start time has passed.
func (r *AuctionRepository) FindDueForStart(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	ids, err := db.New(r.db.DB()).FindAuctionsDueForStart(ctx, db.FindAuctionsDueForStartParams{
		StartTime: now,
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, persistenceErr(fmt.Errorf("query due for start: %w", err))
	}
	return ids, nil
}

func (r *AuctionRepository) publish(ctx context.Context, tx *sql.Tx, evs []domainevents.Event) error {
	if r.bus == nil || len(evs) == 0 {
		return nil
	}
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return messaging.PublishAll(ctx, p, evs)
}

// insertBids writes a.Bids[from:] with their list positions as seq.
func insertBids(ctx context.Context, q *db.Queries, a *models.Auction, from int) error {
	for i := from; i < len(a.Bids); i++ {
		b := a.Bids[i]
		if err := q.InsertBid(ctx, db.InsertBidParams{
			ID:        b.ID,
			AuctionID: a.ID,
			Seq:       int32(i),
			BidderID:  b.BidderID,
			Amount:    b.Amount,
			PlacedAt:  b.Time,
		}); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
	}
	return nil
}

func notFoundOr(err error, id uuid.UUID, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", auctiondomain.ErrAuctionNotFound, id)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// persistenceErr wraps storage failures in ErrPersistence, leaving domain errors as they are.
func persistenceErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auctiondomain.ErrAuctionNotFound),
		errors.Is(err, auctiondomain.ErrProductNotFound),
		errors.Is(err, auctiondomain.ErrPersistence):
		return err
	default:
		return fmt.Errorf("%w: %w", auctiondomain.ErrPersistence, err)
	}
}

func insertParams(a *models.Auction) db.InsertAuctionParams {
	return db.InsertAuctionParams{
		ID:                a.ID,
		ProductID:         a.ProductID,
		SellerID:          a.SellerID,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		StartingPrice:     a.StartingPrice,
		CurrentPrice:      a.CurrentPrice,
		MinBidIncrement:   a.MinBidIncrement,
		ReservePrice:      a.ReservePrice,
		BuyNowPrice:       a.BuyNowPrice,
		Status:            string(a.Status),
		WinnerID:          nullString(a.WinnerID),
		AutoExtendMinutes: int32(a.AutoExtendMinutes),
		IsExtended:        a.IsExtended,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// rowToAuction maps a db.Auction and its ordered bids to a domain models.Auction.
func rowToAuction(row db.Auction, bids []db.AuctionBid) *models.Auction {
	a := &models.Auction{
		ID:                row.ID,
		ProductID:         row.ProductID,
		SellerID:          row.SellerID,
		StartTime:         row.StartTime.UTC(),
		EndTime:           row.EndTime.UTC(),
		StartingPrice:     row.StartingPrice,
		CurrentPrice:      row.CurrentPrice,
		MinBidIncrement:   row.MinBidIncrement,
		ReservePrice:      row.ReservePrice,
		BuyNowPrice:       row.BuyNowPrice,
		Status:            models.Status(row.Status),
		WinnerID:          row.WinnerID.String,
		AutoExtendMinutes: int(row.AutoExtendMinutes),
		IsExtended:        row.IsExtended,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
		Bids:              make([]models.Bid, len(bids)),
	}
	for i, b := range bids {
		a.Bids[i] = models.Bid{
			ID:       b.ID,
			BidderID: b.BidderID,
			Amount:   b.Amount,
			Time:     b.PlacedAt.UTC(),
		}
	}
	return a
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
