package service_interfaces

import (
	"context"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/models"
	"github.com/api-sage/multicurrency-account/src/internal/commons"
)

type RateService interface {
	GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error)
}
