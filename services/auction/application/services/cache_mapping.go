package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

func toCached(a *models.Auction) *pkgcache.CachedAuction {
	c := &pkgcache.CachedAuction{
		ID:                a.ID,
		ProductID:         a.ProductID,
		SellerID:          a.SellerID,
		Status:            a.Status.String(),
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		StartingPrice:     a.StartingPrice.String(),
		CurrentPrice:      a.CurrentPrice.String(),
		MinBidIncrement:   a.MinBidIncrement.String(),
		ReservePrice:      nullDecimalString(a.ReservePrice),
		BuyNowPrice:       nullDecimalString(a.BuyNowPrice),
		WinnerID:          a.WinnerID,
		AutoExtendMinutes: a.AutoExtendMinutes,
		IsExtended:        a.IsExtended,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		Bids:              make([]pkgcache.CachedBid, len(a.Bids)),
	}
	for i, b := range a.Bids {
		c.Bids[i] = pkgcache.CachedBid{ID: b.ID, BidderID: b.BidderID, Amount: b.Amount.String(), Time: b.Time}
	}
	return c
}

func fromCached(c *pkgcache.CachedAuction) (*models.Auction, error) {
	status, ok := models.ParseStatus(c.Status)
	if !ok {
		return nil, fmt.Errorf("cached auction %s: unknown status %q", c.ID, c.Status)
	}
	starting, err := decimal.NewFromString(c.StartingPrice)
	if err != nil {
		return nil, fmt.Errorf("cached starting price: %w", err)
	}
	current, err := decimal.NewFromString(c.CurrentPrice)
	if err != nil {
		return nil, fmt.Errorf("cached current price: %w", err)
	}
	increment, err := decimal.NewFromString(c.MinBidIncrement)
	if err != nil {
		return nil, fmt.Errorf("cached increment: %w", err)
	}
	reserve, err := parseNullDecimal(c.ReservePrice)
	if err != nil {
		return nil, fmt.Errorf("cached reserve price: %w", err)
	}
	buyNow, err := parseNullDecimal(c.BuyNowPrice)
	if err != nil {
		return nil, fmt.Errorf("cached buy-now price: %w", err)
	}

	a := &models.Auction{
		ID:                c.ID,
		ProductID:         c.ProductID,
		SellerID:          c.SellerID,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		StartingPrice:     starting,
		CurrentPrice:      current,
		MinBidIncrement:   increment,
		ReservePrice:      reserve,
		BuyNowPrice:       buyNow,
		Status:            status,
		WinnerID:          c.WinnerID,
		AutoExtendMinutes: c.AutoExtendMinutes,
		IsExtended:        c.IsExtended,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Bids:              make([]models.Bid, len(c.Bids)),
	}
	for i, b := range c.Bids {
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("cached bid %s amount: %w", b.ID, err)
		}
		a.Bids[i] = models.Bid{ID: b.ID, BidderID: b.BidderID, Amount: amount, Time: b.Time}
	}
	return a, nil
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
