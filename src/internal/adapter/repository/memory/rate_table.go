package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

var _ domain.RateProvider = (*RateTable)(nil)

// RateTable serves fixed bid/ask quotes.
type RateTable struct {
	mu    sync.RWMutex
	rates map[domain.Currency]domain.Rate
}

func NewRateTable(rates ...domain.Rate) *RateTable {
	t := &RateTable{rates: make(map[domain.Currency]domain.Rate, len(rates))}
	for _, rate := range rates {
		t.rates[rate.Currency] = rate
	}
	return t
}

// DefaultRateTable quotes every foreign currency at a plausible spread.
func DefaultRateTable() *RateTable {
	return NewRateTable(
		domain.Rate{Currency: domain.USD, Bid: decimal.RequireFromString("3.9214"), Ask: decimal.RequireFromString("4.0006")},
		domain.Rate{Currency: domain.EUR, Bid: decimal.RequireFromString("4.2617"), Ask: decimal.RequireFromString("4.3479")},
		domain.Rate{Currency: domain.GBP, Bid: decimal.RequireFromString("4.9402"), Ask: decimal.RequireFromString("5.0400")},
		domain.Rate{Currency: domain.CHF, Bid: decimal.RequireFromString("4.5101"), Ask: decimal.RequireFromString("4.6013")},
	)
}

func (t *RateTable) Set(rate domain.Rate) {
	t.mu.Lock()
	t.rates[rate.Currency] = rate
	t.mu.Unlock()
}

func (t *RateTable) BuyingRate(_ context.Context, currency domain.Currency) (decimal.Decimal, error) {
	rate, err := t.lookup(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NormalizeRate(rate.Ask), nil
}

func (t *RateTable) SellingRate(_ context.Context, currency domain.Currency) (decimal.Decimal, error) {
	rate, err := t.lookup(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NormalizeRate(rate.Bid), nil
}

func (t *RateTable) lookup(currency domain.Currency) (domain.Rate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rate, ok := t.rates[currency]
	if !ok {
		return domain.Rate{}, fmt.Errorf("%w: no quote for %s", domain.ErrRateUnavailable, currency)
	}
	return rate, nil
}
