package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

var testNow = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func activeAuction(current, increment string, endIn time.Duration) *models.Auction {
	return &models.Auction{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		SellerID:          "seller",
		StartTime:         testNow.Add(-time.Hour),
		EndTime:           testNow.Add(endIn),
		StartingPrice:     dec(current),
		CurrentPrice:      dec(current),
		MinBidIncrement:   dec(increment),
		Status:            models.StatusActive,
		Bids:              []models.Bid{},
		AutoExtendMinutes: 5,
	}
}
