// Package nbp reads bid/ask quotes from table C of the National Bank of
// Poland exchange-rate API.
package nbp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
)

var _ domain.RateProvider = (*Client)(nil)

const maxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

type apiResponse struct {
	Code  string    `json:"code"`
	Rates []apiRate `json:"rates"`
}

type apiRate struct {
	EffectiveDate string          `json:"effectiveDate"`
	Bid           decimal.Decimal `json:"bid"`
	Ask           decimal.Decimal `json:"ask"`
}

// NewClient targets baseURL, e.g. https://api.nbp.pl/api/exchangerates/rates/c.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BuyingRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	rate, err := c.fetch(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NormalizeRate(rate.Ask), nil
}

func (c *Client) SellingRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	rate, err := c.fetch(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NormalizeRate(rate.Bid), nil
}

// fetch coalesces concurrent lookups of the same currency into one request.
// The shared request is detached from any single caller's cancellation and
// bounded by the client timeout; each caller still stops waiting when its
// own ctx is done.
func (c *Client) fetch(ctx context.Context, currency domain.Currency) (apiRate, error) {
	if currency.IsBase() || !currency.IsSupported() {
		return apiRate{}, fmt.Errorf("%w: no quote for %s", domain.ErrRateUnavailable, currency)
	}

	shared := context.WithoutCancel(ctx)
	results := c.group.DoChan(string(currency), func() (any, error) {
		return c.request(shared, currency)
	})

	select {
	case <-ctx.Done():
		return apiRate{}, fmt.Errorf("%w: %w", domain.ErrRateUnavailable, ctx.Err())
	case res := <-results:
		if res.Err != nil {
			return apiRate{}, res.Err
		}
		return res.Val.(apiRate), nil
	}
}

func (c *Client) request(ctx context.Context, currency domain.Currency) (apiRate, error) {
	url := fmt.Sprintf("%s/%s/?format=json", c.baseURL, strings.ToLower(string(currency)))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apiRate{}, fmt.Errorf("%w: build request: %v", domain.ErrRateUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("nbp rate request failed", err, logger.Fields{
			"currency": currency,
		})
		return apiRate{}, fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("nbp rate request rejected", nil, logger.Fields{
			"currency": currency,
			"status":   resp.StatusCode,
		})
		return apiRate{}, fmt.Errorf("%w: nbp api status %d", domain.ErrRateUnavailable, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return apiRate{}, fmt.Errorf("%w: malformed nbp response: %v", domain.ErrRateUnavailable, err)
	}
	if len(body.Rates) == 0 {
		return apiRate{}, fmt.Errorf("%w: empty rates in nbp response", domain.ErrRateUnavailable)
	}

	rate := body.Rates[0]
	if !rate.Bid.IsPositive() || !rate.Ask.IsPositive() {
		return apiRate{}, fmt.Errorf("%w: non-positive quote in nbp response", domain.ErrRateUnavailable)
	}

	logger.Info("nbp rate fetched", logger.Fields{
		"currency":      currency,
		"effectiveDate": rate.EffectiveDate,
		"durationMs":    time.Since(start).Milliseconds(),
	})
	return rate, nil
}
