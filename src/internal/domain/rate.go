package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a bid/ask quote of one foreign currency in the base currency.
type Rate struct {
	ID        int64
	Currency  Currency
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	RateDate  time.Time
	CreatedAt time.Time
}
