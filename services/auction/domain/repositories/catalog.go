package repositories

import (
	"context"

	"github.com/google/uuid"
)

// ProductRef is the slice of a catalog product the auction context needs.
type ProductRef struct {
	ID       uuid.UUID
	SellerID string
	Title    string
}

// ProductCatalog resolves product references owned by the catalog context.
// Resolve returns domain.ErrProductNotFound for unknown products.
type ProductCatalog interface {
	Resolve(ctx context.Context, productID uuid.UUID) (*ProductRef, error)
}
