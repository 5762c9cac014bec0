package service_interfaces

import (
	"context"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/models"
	"github.com/api-sage/multicurrency-account/src/internal/commons"
)

type AccountService interface {
	RegisterAccount(ctx context.Context, req models.RegisterAccountRequest) (commons.Response[models.AccountDetailsResponse], error)
	ExchangeMoney(ctx context.Context, pesel string, req models.ExchangeMoneyRequest) (commons.Response[models.TransactionResponse], error)
	AccountDetails(ctx context.Context, pesel string) (commons.Response[models.AccountDetailsResponse], error)
	AccountTransactions(ctx context.Context, pesel string) (commons.Response[models.AccountTransactionsResponse], error)
}
