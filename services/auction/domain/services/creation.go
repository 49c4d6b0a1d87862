package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

var minIncrement = decimal.RequireFromString("0.01")

// ValidateAuctionForCreation performs cross-field validation on a freshly
// constructed Auction before it is persisted.
//
// Business rules:
//   - starting price, reserve and buy-now price are not negative
//   - increment is at least 0.01
//   - every money field has at most two decimal places and twelve integer digits
//   - auto-extend is between one minute and one day
//   - end time is after both the start time and now
func ValidateAuctionForCreation(a *models.Auction, now time.Time) error {
	if a == nil {
		return fmt.Errorf("%w: auction cannot be nil", domain.ErrInvalidAuction)
	}
	if a.ID == uuid.Nil || a.ProductID == uuid.Nil {
		return fmt.Errorf("%w: id and product_id must be set", domain.ErrInvalidAuction)
	}
	if a.SellerID == "" {
		return fmt.Errorf("%w: seller must be set", domain.ErrInvalidAuction)
	}
	for _, m := range []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"starting price", decimal.NewNullDecimal(a.StartingPrice)},
		{"minimum bid increment", decimal.NewNullDecimal(a.MinBidIncrement)},
		{"reserve price", a.ReservePrice},
		{"buy now price", a.BuyNowPrice},
	} {
		if !m.value.Valid {
			continue
		}
		if err := ValidateAmount(m.value.Decimal); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidAuction, m.name, err)
		}
	}
	if a.StartingPrice.IsNegative() {
		return fmt.Errorf("%w: starting price must not be negative", domain.ErrInvalidAuction)
	}
	if a.MinBidIncrement.LessThan(minIncrement) {
		return fmt.Errorf("%w: minimum bid increment must be at least 0.01", domain.ErrInvalidAuction)
	}
	if a.ReservePrice.Valid && a.ReservePrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: reserve price must not be negative", domain.ErrInvalidAuction)
	}
	if a.BuyNowPrice.Valid && a.BuyNowPrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: buy now price must not be negative", domain.ErrInvalidAuction)
	}
	if a.AutoExtendMinutes < 1 || a.AutoExtendMinutes > models.MaxAutoExtendMinutes {
		return fmt.Errorf("%w: auto extend must be between 1 and %d minutes", domain.ErrInvalidAuction, models.MaxAutoExtendMinutes)
	}
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidAuction)
	}
	if !a.EndTime.After(now) {
		return fmt.Errorf("%w: end time must be in the future", domain.ErrInvalidAuction)
	}
	return nil
}
