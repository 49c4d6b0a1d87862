package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
)

// DemoProducts are loaded by SEED_DEMO_DATA so a fresh instance has something to auction.
var DemoProducts = []repositories.ProductRef{
	{ID: uuid.MustParse("6f1c2a4e-2d3b-4c1a-9e0f-1a2b3c4d5e01"), SellerID: "demo-seller-1", Title: "Vintage film camera"},
	{ID: uuid.MustParse("6f1c2a4e-2d3b-4c1a-9e0f-1a2b3c4d5e02"), SellerID: "demo-seller-1", Title: "Mechanical keyboard"},
	{ID: uuid.MustParse("6f1c2a4e-2d3b-4c1a-9e0f-1a2b3c4d5e03"), SellerID: "demo-seller-2", Title: "Signed first edition"},
}

// Catalog is an in-memory ProductCatalog.
type Catalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]repositories.ProductRef
}

var _ repositories.ProductCatalog = (*Catalog)(nil)

// NewCatalog returns a catalog holding the given products.
func NewCatalog(products ...repositories.ProductRef) *Catalog {
	c := &Catalog{products: make(map[uuid.UUID]repositories.ProductRef, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Add registers or replaces a product.
func (c *Catalog) Add(p repositories.ProductRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// Resolve returns the product or ErrProductNotFound.
func (c *Catalog) Resolve(_ context.Context, productID uuid.UUID) (*repositories.ProductRef, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", auctiondomain.ErrProductNotFound, productID)
	}
	return &p, nil
}
