package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/models"
	"github.com/api-sage/multicurrency-account/src/internal/commons"
	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
	"github.com/api-sage/multicurrency-account/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

// Verify that AccountService implements the service_interfaces.AccountService interface
var _ service_interfaces.AccountService = (*AccountService)(nil)

// AccountService runs every command as load, validate, persist under the
// per-account lock. Accounts are keyed by the owner's PESEL.
type AccountService struct {
	accountRepo domain.AccountRepository
	rates       domain.RateProvider
	locker      domain.AccountLocker
	clock       domain.Clock
}

func NewAccountService(
	accountRepo domain.AccountRepository,
	rates domain.RateProvider,
	locker domain.AccountLocker,
	clock domain.Clock,
) *AccountService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AccountService{
		accountRepo: accountRepo,
		rates:       rates,
		locker:      locker,
		clock:       clock,
	}
}

func (s *AccountService) RegisterAccount(ctx context.Context, req models.RegisterAccountRequest) (commons.Response[models.AccountDetailsResponse], error) {
	logger.Info("account service register account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service register account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountDetailsResponse]("validation failed", err.Error()), fmt.Errorf("%w: %v", commons.ErrValidation, err)
	}

	pesel, err := domain.ParsePesel(req.Owner.Pesel)
	if err != nil {
		logger.Error("account service register account invalid pesel", err, nil)
		return failure[models.AccountDetailsResponse](err), err
	}
	owner, err := domain.NewOwner(pesel, req.Owner.FirstName, req.Owner.LastName)
	if err != nil {
		logger.Error("account service register account invalid owner", err, nil)
		return failure[models.AccountDetailsResponse](err), err
	}

	var account *domain.Account
	err = s.withAccount(ctx, pesel.String(), func(loaded *domain.Account) ([]domain.Event, error) {
		account = loaded
		return loaded.Register(domain.RegisterAccount{
			Timestamp:      s.clock.Now(),
			Owner:          owner,
			InitialDeposit: domain.NewMoney(domain.BaseCurrency, req.InitialDeposit),
		})
	})
	if err != nil {
		logger.Error("account service register account failed", err, logger.Fields{
			"pesel": pesel.String(),
		})
		return failure[models.AccountDetailsResponse](err), err
	}

	logger.Info("account service register account success", logger.Fields{
		"pesel":          pesel.String(),
		"initialDeposit": account.Balance(domain.BaseCurrency).String(),
	})

	return commons.SuccessResponse("account registered successfully", mapAccountDetails(account)), nil
}

func (s *AccountService) ExchangeMoney(ctx context.Context, rawPesel string, req models.ExchangeMoneyRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("account service exchange money request", logger.Fields{
		"pesel":   rawPesel,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service exchange money validation failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), fmt.Errorf("%w: %v", commons.ErrValidation, err)
	}

	pesel, err := domain.ParsePesel(rawPesel)
	if err != nil {
		return failure[models.TransactionResponse](err), err
	}
	source, err := domain.ParseCurrency(req.SourceCurrency)
	if err != nil {
		return failure[models.TransactionResponse](err), err
	}
	target, err := domain.ParseCurrency(req.TargetCurrency)
	if err != nil {
		return failure[models.TransactionResponse](err), err
	}
	direction, foreign, err := domain.ClassifyExchange(source, target)
	if err != nil {
		return failure[models.TransactionResponse](err), err
	}

	var produced []domain.Event
	err = s.withAccount(ctx, pesel.String(), func(account *domain.Account) ([]domain.Event, error) {
		if !account.IsRegistered() {
			return nil, domain.ErrAccountNotFound
		}

		rate, err := s.quote(ctx, direction, foreign)
		if err != nil {
			return nil, err
		}

		produced, err = account.Exchange(domain.ExchangeMoney{
			Timestamp: s.clock.Now(),
			Amount:    req.Amount,
			Source:    source,
			Target:    target,
			Rate:      rate,
		})
		return produced, err
	})
	if err != nil {
		logger.Error("account service exchange money failed", err, logger.Fields{
			"pesel":  pesel.String(),
			"source": source,
			"target": target,
		})
		return failure[models.TransactionResponse](err), err
	}

	transaction := mapTransaction(produced[0])
	logger.Info("account service exchange money success", logger.Fields{
		"pesel":      pesel.String(),
		"type":       transaction.Type,
		"amount":     transaction.Amount,
		"currency":   transaction.Currency,
		"rate":       transaction.Rate,
		"baseAmount": transaction.BaseAmount,
	})

	return commons.SuccessResponse("currency exchanged successfully", transaction), nil
}

func (s *AccountService) AccountDetails(ctx context.Context, rawPesel string) (commons.Response[models.AccountDetailsResponse], error) {
	logger.Info("account service account details request", logger.Fields{
		"pesel": rawPesel,
	})

	account, err := s.loadRegistered(ctx, rawPesel)
	if err != nil {
		logger.Error("account service account details failed", err, logger.Fields{
			"pesel": rawPesel,
		})
		return failure[models.AccountDetailsResponse](err), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountDetails(account)), nil
}

func (s *AccountService) AccountTransactions(ctx context.Context, rawPesel string) (commons.Response[models.AccountTransactionsResponse], error) {
	logger.Info("account service account transactions request", logger.Fields{
		"pesel": rawPesel,
	})

	account, err := s.loadRegistered(ctx, rawPesel)
	if err != nil {
		logger.Error("account service account transactions failed", err, logger.Fields{
			"pesel": rawPesel,
		})
		return failure[models.AccountTransactionsResponse](err), err
	}

	events := account.Events()
	slices.Reverse(events)
	slices.SortStableFunc(events, func(a, b domain.Event) int {
		return b.OccurredAt().Compare(a.OccurredAt())
	})

	transactions := make([]models.TransactionResponse, 0, len(events))
	for _, event := range events {
		transactions = append(transactions, mapTransaction(event))
	}

	logger.Info("account service account transactions success", logger.Fields{
		"pesel": account.ID(),
		"count": len(transactions),
	})

	return commons.SuccessResponse("transactions fetched successfully", models.AccountTransactionsResponse{
		Transactions: transactions,
	}), nil
}

// withAccount holds the account lock across load, decide and save so two
// writers never both decide against the same history.
func (s *AccountService) withAccount(ctx context.Context, accountID string, decide func(*domain.Account) ([]domain.Event, error)) error {
	unlock, err := s.locker.Lock(ctx, accountID)
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	defer unlock()

	account, err := s.accountRepo.Load(ctx, accountID)
	if err != nil {
		return err
	}

	events, err := decide(account)
	if err != nil {
		return err
	}

	return s.accountRepo.Save(ctx, accountID, events)
}

func (s *AccountService) loadRegistered(ctx context.Context, rawPesel string) (*domain.Account, error) {
	pesel, err := domain.ParsePesel(rawPesel)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.Load(ctx, pesel.String())
	if err != nil {
		return nil, err
	}
	if !account.IsRegistered() {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountService) quote(ctx context.Context, direction domain.ExchangeDirection, currency domain.Currency) (decimal.Decimal, error) {
	if direction == domain.DirectionBuy {
		return s.rates.BuyingRate(ctx, currency)
	}
	return s.rates.SellingRate(ctx, currency)
}

// failure builds the response body for err; the caller still returns err so
// the transport can pick a status.
func failure[T any](err error) commons.Response[T] {
	switch {
	case domain.IsRejection(err):
		return commons.ErrorResponse[T]("validation failed", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		return commons.ErrorResponse[T]("account not found")
	case errors.Is(err, domain.ErrRateUnavailable):
		return commons.ErrorResponse[T]("exchange rate unavailable", "Unable to fetch exchange rate right now")
	default:
		return commons.ErrorResponse[T]("request failed", "Unable to process request right now")
	}
}

func mapAccountDetails(account *domain.Account) models.AccountDetailsResponse {
	owner := account.Owner()
	subAccounts := make([]models.SubAccountResponse, 0)
	for _, sub := range account.SubAccounts() {
		subAccounts = append(subAccounts, models.SubAccountResponse{
			Currency: sub.Currency.String(),
			Balance:  sub.Balance.Amount().StringFixed(domain.MoneyScale),
		})
	}

	return models.AccountDetailsResponse{
		Owner: models.OwnerDTO{
			Pesel:     owner.Pesel.String(),
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
		},
		SubAccounts: subAccounts,
	}
}

func mapTransaction(event domain.Event) models.TransactionResponse {
	response := models.TransactionResponse{
		Timestamp: event.OccurredAt().UTC().Format(time.RFC3339Nano),
	}

	switch e := event.(type) {
	case domain.AccountRegistered:
		response.Type = models.TransactionInitialDeposit
		response.InitialDeposit = e.InitialDeposit.Amount().StringFixed(domain.MoneyScale)
	case domain.CurrencyBought:
		response.Type = models.TransactionCurrencyBought
		response.Currency = e.Bought.Currency().String()
		response.Amount = e.Bought.Amount().StringFixed(domain.MoneyScale)
		response.Rate = e.Rate.StringFixed(domain.RateScale)
		response.BaseAmount = e.Paid.Amount().StringFixed(domain.MoneyScale)
	case domain.CurrencySold:
		response.Type = models.TransactionCurrencySold
		response.Currency = e.Sold.Currency().String()
		response.Amount = e.Sold.Amount().StringFixed(domain.MoneyScale)
		response.Rate = e.Rate.StringFixed(domain.RateScale)
		response.BaseAmount = e.Received.Amount().StringFixed(domain.MoneyScale)
	}

	return response
}
