package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateProvider quotes the base-currency price of a foreign currency.
// BuyingRate is the ask (what the customer pays per unit), SellingRate the bid.
// Failures wrap ErrRateUnavailable.
type RateProvider interface {
	BuyingRate(ctx context.Context, currency Currency) (decimal.Decimal, error)
	SellingRate(ctx context.Context, currency Currency) (decimal.Decimal, error)
}
