package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/models"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/lock"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/repository/implementations"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/repository/memory"
	"github.com/api-sage/multicurrency-account/src/internal/commons"
	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/usecase/services"
)

const adultPesel = "64102278587"

type rateProviderStub struct {
	buyingRateFn  func(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
	sellingRateFn func(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
}

func (s rateProviderStub) BuyingRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	if s.buyingRateFn != nil {
		return s.buyingRateFn(ctx, currency)
	}
	return decimal.RequireFromString("4.0006"), nil
}

func (s rateProviderStub) SellingRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	if s.sellingRateFn != nil {
		return s.sellingRateFn(ctx, currency)
	}
	return decimal.RequireFromString("3.9214"), nil
}

// tickingClock advances one second per reading so events get distinct times.
type tickingClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(time.Second)
	return c.at
}

type lockerStub struct {
	lockFn func(ctx context.Context, accountID string) (func(), error)
}

func (s lockerStub) Lock(ctx context.Context, accountID string) (func(), error) {
	return s.lockFn(ctx, accountID)
}

type fixture struct {
	svc   *services.AccountService
	store *memory.EventStore
}

func newFixture(rates domain.RateProvider) fixture {
	clock := &tickingClock{at: time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)}
	store := memory.NewEventStore()
	repo := implementations.NewAccountRepository(store, clock)
	return fixture{
		svc:   services.NewAccountService(repo, rates, lock.NewKeyedMutex(), clock),
		store: store,
	}
}

func registerRequest(pesel string, deposit string) models.RegisterAccountRequest {
	return models.RegisterAccountRequest{
		Owner: models.OwnerDTO{
			Pesel:     pesel,
			FirstName: "Jan",
			LastName:  "Kowalski",
		},
		InitialDeposit: decimal.RequireFromString(deposit),
	}
}

func exchangeRequest(amount string, source string, target string) models.ExchangeMoneyRequest {
	return models.ExchangeMoneyRequest{
		Amount:         decimal.RequireFromString(amount),
		SourceCurrency: source,
		TargetCurrency: target,
	}
}

func balances(t *testing.T, resp commons.Response[models.AccountDetailsResponse]) map[string]string {
	t.Helper()
	require.NotNil(t, resp.Data)
	out := make(map[string]string)
	for _, sub := range resp.Data.SubAccounts {
		out[sub.Currency] = sub.Balance
	}
	return out
}

func TestRegisterAccountSuccess(t *testing.T) {
	f := newFixture(rateProviderStub{})

	resp, err := f.svc.RegisterAccount(context.Background(), registerRequest(adultPesel, "1000"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Jan", resp.Data.Owner.FirstName)
	assert.Equal(t, adultPesel, resp.Data.Owner.Pesel)

	got := balances(t, resp)
	assert.Equal(t, "1000.00", got["PLN"])
	assert.Equal(t, "0.00", got["USD"])
	assert.Len(t, got, len(domain.Currencies()))

	records, err := f.store.ReadAll(context.Background(), adultPesel)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.EventAccountRegistered, records[0].Type)
}

func TestRegisterAccountRejections(t *testing.T) {
	cases := map[string]struct {
		req  models.RegisterAccountRequest
		want error
	}{
		"invalid pesel":    {req: registerRequest("64102278588", "10"), want: domain.ErrInvalidIdentity},
		"underage":         {req: registerRequest("10301512342", "10"), want: domain.ErrUnderageOwner},
		"negative deposit": {req: registerRequest(adultPesel, "-1"), want: commons.ErrValidation},
		"missing name": {
			req:  models.RegisterAccountRequest{Owner: models.OwnerDTO{Pesel: adultPesel, FirstName: "Jan"}},
			want: commons.ErrValidation,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(rateProviderStub{})

			resp, err := f.svc.RegisterAccount(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.False(t, resp.Success)
			assert.Equal(t, "validation failed", resp.Message)
		})
	}
}

func TestRegisterAccountTwiceIsRejected(t *testing.T) {
	f := newFixture(rateProviderStub{})

	_, err := f.svc.RegisterAccount(context.Background(), registerRequest(adultPesel, "1000"))
	require.NoError(t, err)

	_, err = f.svc.RegisterAccount(context.Background(), registerRequest(adultPesel, "5"))
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	records, err := f.store.ReadAll(context.Background(), adultPesel)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExchangeMoneyBuysWithAskAndSellsWithBid(t *testing.T) {
	var asked, bid []domain.Currency
	f := newFixture(rateProviderStub{
		buyingRateFn: func(_ context.Context, currency domain.Currency) (decimal.Decimal, error) {
			asked = append(asked, currency)
			return decimal.RequireFromString("4.0006"), nil
		},
		sellingRateFn: func(_ context.Context, currency domain.Currency) (decimal.Decimal, error) {
			bid = append(bid, currency)
			return decimal.RequireFromString("3.9214"), nil
		},
	})
	ctx := context.Background()

	_, err := f.svc.RegisterAccount(ctx, registerRequest(adultPesel, "1000"))
	require.NoError(t, err)

	bought, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("100", "pln", "usd"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCurrencyBought, bought.Data.Type)
	assert.Equal(t, "100.00", bought.Data.Amount)
	assert.Equal(t, "4.0006", bought.Data.Rate)
	assert.Equal(t, "400.06", bought.Data.BaseAmount)

	sold, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("50", "USD", "PLN"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCurrencySold, sold.Data.Type)
	assert.Equal(t, "196.07", sold.Data.BaseAmount)

	assert.Equal(t, []domain.Currency{domain.USD}, asked)
	assert.Equal(t, []domain.Currency{domain.USD}, bid)

	details, err := f.svc.AccountDetails(ctx, adultPesel)
	require.NoError(t, err)
	got := balances(t, details)
	assert.Equal(t, "796.01", got["PLN"])
	assert.Equal(t, "50.00", got["USD"])
}

func TestExchangeMoneyFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered account", func(t *testing.T) {
		f := newFixture(rateProviderStub{})
		resp, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("1", "PLN", "USD"))
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		assert.Equal(t, "account not found", resp.Message)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		f := newFixture(rateProviderStub{})
		_, err := f.svc.RegisterAccount(ctx, registerRequest(adultPesel, "10"))
		require.NoError(t, err)

		_, err = f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("100", "PLN", "USD"))
		var insufficient *domain.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, domain.PLN, insufficient.Currency)

		records, err := f.store.ReadAll(ctx, adultPesel)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("foreign to foreign", func(t *testing.T) {
		f := newFixture(rateProviderStub{})
		_, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("1", "EUR", "USD"))
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		f := newFixture(rateProviderStub{})
		_, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("1", "PLN", "JPY"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
	})

	t.Run("rate unavailable", func(t *testing.T) {
		f := newFixture(rateProviderStub{
			buyingRateFn: func(context.Context, domain.Currency) (decimal.Decimal, error) {
				return decimal.Zero, domain.ErrRateUnavailable
			},
		})
		_, err := f.svc.RegisterAccount(ctx, registerRequest(adultPesel, "1000"))
		require.NoError(t, err)

		resp, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("1", "PLN", "USD"))
		assert.ErrorIs(t, err, domain.ErrRateUnavailable)
		assert.Equal(t, "exchange rate unavailable", resp.Message)
	})

	t.Run("lock not acquired", func(t *testing.T) {
		clock := domain.FixedClock{At: time.Now()}
		svc := services.NewAccountService(
			implementations.NewAccountRepository(memory.NewEventStore(), clock),
			rateProviderStub{},
			lockerStub{lockFn: func(context.Context, string) (func(), error) {
				return nil, errors.New("redis down")
			}},
			clock,
		)
		resp, err := svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("1", "PLN", "USD"))
		assert.ErrorContains(t, err, "lock account")
		assert.Equal(t, "request failed", resp.Message)
	})
}

func TestAccountTransactionsNewestFirst(t *testing.T) {
	f := newFixture(rateProviderStub{})
	ctx := context.Background()

	_, err := f.svc.RegisterAccount(ctx, registerRequest(adultPesel, "1000"))
	require.NoError(t, err)
	_, err = f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("10", "PLN", "EUR"))
	require.NoError(t, err)
	_, err = f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("5", "EUR", "PLN"))
	require.NoError(t, err)

	resp, err := f.svc.AccountTransactions(ctx, adultPesel)
	require.NoError(t, err)

	transactions := resp.Data.Transactions
	require.Len(t, transactions, 3)
	assert.Equal(t, models.TransactionCurrencySold, transactions[0].Type)
	assert.Equal(t, models.TransactionCurrencyBought, transactions[1].Type)
	assert.Equal(t, models.TransactionInitialDeposit, transactions[2].Type)
	assert.Equal(t, "1000.00", transactions[2].InitialDeposit)
	assert.Equal(t, "EUR", transactions[1].Currency)
}

func TestQueriesRequireRegisteredAccount(t *testing.T) {
	f := newFixture(rateProviderStub{})
	ctx := context.Background()

	_, err := f.svc.AccountDetails(ctx, adultPesel)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.svc.AccountTransactions(ctx, adultPesel)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.svc.AccountDetails(ctx, "123")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}

func TestConcurrentExchangesNeverOverdraw(t *testing.T) {
	f := newFixture(rateProviderStub{
		buyingRateFn: func(context.Context, domain.Currency) (decimal.Decimal, error) {
			return decimal.NewFromInt(4), nil
		},
	})
	ctx := context.Background()

	_, err := f.svc.RegisterAccount(ctx, registerRequest(adultPesel, "100"))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ExchangeMoney(ctx, adultPesel, exchangeRequest("5", "PLN", "USD")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)

	details, err := f.svc.AccountDetails(ctx, adultPesel)
	require.NoError(t, err)
	got := balances(t, details)
	assert.Equal(t, "0.00", got["PLN"])
	assert.Equal(t, "25.00", got["USD"])
}
