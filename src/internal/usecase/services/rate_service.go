package services

import (
	"context"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/models"
	"github.com/api-sage/multicurrency-account/src/internal/commons"
	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
	"github.com/api-sage/multicurrency-account/src/internal/usecase/service_interfaces"
)

// Verify that RateService implements the service_interfaces.RateService interface
var _ service_interfaces.RateService = (*RateService)(nil)

type RateService struct {
	rates domain.RateProvider
}

func NewRateService(rates domain.RateProvider) *RateService {
	return &RateService{rates: rates}
}

// GetRates quotes every foreign currency against the base currency. One
// missing quote fails the whole listing.
func (s *RateService) GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error) {
	logger.Info("rate service get rates request", nil)

	resp := make([]models.RateResponse, 0)
	for _, currency := range domain.Currencies() {
		if currency.IsBase() {
			continue
		}

		ask, err := s.rates.BuyingRate(ctx, currency)
		if err != nil {
			logger.Error("rate service get buying rate failed", err, logger.Fields{
				"currency": currency,
			})
			return failure[[]models.RateResponse](err), err
		}
		bid, err := s.rates.SellingRate(ctx, currency)
		if err != nil {
			logger.Error("rate service get selling rate failed", err, logger.Fields{
				"currency": currency,
			})
			return failure[[]models.RateResponse](err), err
		}

		resp = append(resp, models.RateResponse{
			Currency:     currency.String(),
			BaseCurrency: domain.BaseCurrency.String(),
			Bid:          bid.StringFixed(domain.RateScale),
			Ask:          ask.StringFixed(domain.RateScale),
		})
	}

	logger.Info("rate service get rates success", logger.Fields{
		"count": len(resp),
	})

	return commons.SuccessResponse("rates fetched successfully", resp), nil
}
