package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// ValidateAmount rejects money values outside the representable range.
// It looks only at the exponent and coefficient length, so it stays cheap
// for inputs like 1e20000000 that would be expensive to compare or rescale.
func ValidateAmount(d decimal.Decimal) error {
	exp := int64(d.Exponent())
	if exp < -models.MoneyScale {
		return fmt.Errorf("%w: at most %d decimal places", domain.ErrInvalidAmount, models.MoneyScale)
	}
	if int64(d.NumDigits())+exp > models.MaxMoneyIntDigits {
		return fmt.Errorf("%w: at most %d integer digits", domain.ErrInvalidAmount, models.MaxMoneyIntDigits)
	}
	return nil
}
