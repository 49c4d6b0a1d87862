package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/database"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres/db"
)

// Catalog resolves products from the catalog-owned products table.
type Catalog struct {
	db *database.Database
}

var _ repositories.ProductCatalog = (*Catalog)(nil)

// NewCatalog returns a Catalog reading from the given pool.
func NewCatalog(database *database.Database) *Catalog {
	return &Catalog{db: database}
}

// Resolve returns the product or ErrProductNotFound.
func (c *Catalog) Resolve(ctx context.Context, productID uuid.UUID) (*repositories.ProductRef, error) {
	row, err := db.New(c.db.DB()).GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", auctiondomain.ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("%w: query product: %w", auctiondomain.ErrPersistence, err)
	}
	return &repositories.ProductRef{ID: row.ID, SellerID: row.SellerID, Title: row.Title}, nil
}

// Seed upserts products, used for local demo data.
func (c *Catalog) Seed(ctx context.Context, products []repositories.ProductRef) error {
	return c.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		for _, p := range products {
			if err := q.UpsertProduct(ctx, db.UpsertProductParams{ID: p.ID, SellerID: p.SellerID, Title: p.Title}); err != nil {
				return fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
