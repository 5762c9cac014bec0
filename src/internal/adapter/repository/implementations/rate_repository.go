package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
)

var _ domain.RateProvider = (*RateRepository)(nil)

// RateRepository serves bid/ask quotes from the currency_rates table, the
// latest rate_date winning.
type RateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) EnsureDefaultRates(ctx context.Context) error {
	logger.Info("rate repository ensure default rates", nil)

	const query = `
INSERT INTO currency_rates (
	currency,
	bid,
	ask,
	rate_date
) VALUES
	('USD', 3.9214, 4.0006, CURRENT_DATE),
	('EUR', 4.2617, 4.3479, CURRENT_DATE),
	('GBP', 4.9402, 5.0400, CURRENT_DATE),
	('CHF', 4.5101, 4.6013, CURRENT_DATE)
ON CONFLICT (currency, rate_date) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		logger.Error("rate repository ensure default rates failed", err, nil)
		return fmt.Errorf("ensure default rates: %w", err)
	}

	logger.Info("rate repository ensure default rates success", nil)
	return nil
}

func (r *RateRepository) GetRate(ctx context.Context, currency domain.Currency) (domain.Rate, error) {
	logger.Info("rate repository get rate", logger.Fields{
		"currency": currency,
	})

	const query = `
SELECT id, currency, bid, ask, rate_date, created_at
FROM currency_rates
WHERE currency = $1
ORDER BY rate_date DESC
LIMIT 1`

	var (
		rate        domain.Rate
		rawCurrency string
	)
	if err := r.db.QueryRowContext(ctx, query, string(currency)).Scan(
		&rate.ID,
		&rawCurrency,
		&rate.Bid,
		&rate.Ask,
		&rate.RateDate,
		&rate.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("rate repository record not found", logger.Fields{
				"currency": currency,
			})
			return domain.Rate{}, fmt.Errorf("%w: no quote for %s", domain.ErrRateUnavailable, currency)
		}
		logger.Error("rate repository get rate failed", err, logger.Fields{
			"currency": currency,
		})
		return domain.Rate{}, fmt.Errorf("%w: get rate: %v", domain.ErrRateUnavailable, err)
	}
	rate.Currency = domain.Currency(rawCurrency)

	logger.Info("rate repository get rate success", logger.Fields{
		"rateId":   rate.ID,
		"currency": rate.Currency,
		"rateDate": rate.RateDate.Format("2006-01-02"),
	})

	return rate, nil
}

func (r *RateRepository) BuyingRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	rate, err := r.GetRate(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NormalizeRate(rate.Ask), nil
}

func (r *RateRepository) SellingRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	rate, err := r.GetRate(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NormalizeRate(rate.Bid), nil
}
