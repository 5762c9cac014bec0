package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusNew        AccountStatus = "NEW"
	AccountStatusRegistered AccountStatus = "REGISTERED"
)

type SubAccount struct {
	Currency Currency
	Balance  Money
}

// Account is the in-memory projection of one account's event history. It is
// built fresh for every operation and thrown away once new events are saved.
type Account struct {
	id       string
	clock    Clock
	status   AccountStatus
	owner    Owner
	balances map[Currency]Money
	history  []Event
	pending  []Event
}

// NewAccount replays history, which must already be in ascending timestamp
// order, through the same apply path used by commands.
func NewAccount(id string, history []Event, clock Clock) (*Account, error) {
	if clock == nil {
		clock = SystemClock{}
	}

	a := &Account{
		id:       id,
		clock:    clock,
		status:   AccountStatusNew,
		balances: make(map[Currency]Money, len(supportedCurrencies)),
		history:  make([]Event, 0, len(history)),
	}
	for _, currency := range supportedCurrencies {
		a.balances[currency] = ZeroMoney(currency)
	}

	for i, event := range history {
		if err := a.apply(event); err != nil {
			return nil, fmt.Errorf("replay event %d of account %s: %w", i, id, err)
		}
		a.history = append(a.history, event)
	}

	return a, nil
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) Status() AccountStatus {
	return a.status
}

func (a *Account) IsRegistered() bool {
	return a.status == AccountStatusRegistered
}

// Owner is only meaningful once the account is registered.
func (a *Account) Owner() Owner {
	return a.owner
}

func (a *Account) Balance(currency Currency) Money {
	if balance, ok := a.balances[currency]; ok {
		return balance
	}
	return ZeroMoney(currency)
}

// SubAccounts returns one entry per supported currency in a stable order.
func (a *Account) SubAccounts() []SubAccount {
	out := make([]SubAccount, 0, len(supportedCurrencies))
	for _, currency := range supportedCurrencies {
		out = append(out, SubAccount{Currency: currency, Balance: a.balances[currency]})
	}
	return out
}

// Events returns the replayed history followed by events applied in this
// session.
func (a *Account) Events() []Event {
	out := make([]Event, len(a.history))
	copy(out, a.history)
	return out
}

// Pending returns events produced by commands since the account was loaded.
func (a *Account) Pending() []Event {
	out := make([]Event, len(a.pending))
	copy(out, a.pending)
	return out
}

func (a *Account) Register(cmd RegisterAccount) ([]Event, error) {
	if a.IsRegistered() {
		return nil, errorf(ErrAlreadyRegistered, "owner with pesel %s", a.owner.Pesel)
	}
	if cmd.Owner.Pesel.IsZero() {
		return nil, errorf(ErrInvalidOwnerData, "owner is required")
	}

	timestamp := a.timestamp(cmd.Timestamp)
	if cmd.Owner.AgeAt(timestamp) < MinOwnerAge {
		return nil, ErrUnderageOwner
	}

	deposit := cmd.InitialDeposit
	if deposit.Currency() == "" {
		deposit = ZeroMoney(BaseCurrency)
	}
	if deposit.Currency() != BaseCurrency {
		return nil, errorf(ErrInvalidOperation, "initial deposit must be in %s", BaseCurrency)
	}
	if deposit.IsNegative() {
		return nil, errorf(ErrInvalidOperation, "initial deposit cannot be negative")
	}

	return a.record(AccountRegistered{
		Timestamp:      timestamp,
		Owner:          cmd.Owner,
		InitialDeposit: NewMoney(BaseCurrency, deposit.Amount()),
	})
}

// Exchange routes to BuyCurrency or SellCurrency depending on which side is
// the base currency.
func (a *Account) Exchange(cmd ExchangeMoney) ([]Event, error) {
	direction, foreign, err := ClassifyExchange(cmd.Source, cmd.Target)
	if err != nil {
		return nil, err
	}

	switch direction {
	case DirectionBuy:
		return a.BuyCurrency(BuyCurrency{Timestamp: cmd.Timestamp, Amount: cmd.Amount, Currency: foreign, Rate: cmd.Rate})
	default:
		return a.SellCurrency(SellCurrency{Timestamp: cmd.Timestamp, Amount: cmd.Amount, Currency: foreign, Rate: cmd.Rate})
	}
}

func (a *Account) BuyCurrency(cmd BuyCurrency) ([]Event, error) {
	bought, rate, err := a.validateTrade(cmd.Currency, cmd.Amount, cmd.Rate)
	if err != nil {
		return nil, err
	}

	paid := bought.Convert(BaseCurrency, rate, RoundUp)
	if a.Balance(BaseCurrency).LessThan(paid) {
		return nil, &InsufficientFundsError{Currency: BaseCurrency}
	}

	return a.record(CurrencyBought{
		Timestamp: a.timestamp(cmd.Timestamp),
		Bought:    bought,
		Rate:      rate,
		Paid:      paid,
	})
}

func (a *Account) SellCurrency(cmd SellCurrency) ([]Event, error) {
	sold, rate, err := a.validateTrade(cmd.Currency, cmd.Amount, cmd.Rate)
	if err != nil {
		return nil, err
	}

	if a.Balance(sold.Currency()).LessThan(sold) {
		return nil, &InsufficientFundsError{Currency: sold.Currency()}
	}

	return a.record(CurrencySold{
		Timestamp: a.timestamp(cmd.Timestamp),
		Sold:      sold,
		Rate:      rate,
		Received:  sold.Convert(BaseCurrency, rate, RoundDown),
	})
}

func (a *Account) validateTrade(currency Currency, amount decimal.Decimal, rate decimal.Decimal) (Money, decimal.Decimal, error) {
	if !a.IsRegistered() {
		return Money{}, decimal.Zero, ErrAccountNotRegistered
	}
	if !currency.IsSupported() {
		return Money{}, decimal.Zero, ErrUnsupportedCurrency
	}
	if currency.IsBase() {
		return Money{}, decimal.Zero, errorf(ErrInvalidOperation, "cannot trade %s against itself", BaseCurrency)
	}

	money := NewMoney(currency, amount)
	if !money.IsPositive() {
		return Money{}, decimal.Zero, errorf(ErrInvalidOperation, "amount must be greater than zero")
	}
	if !rate.IsPositive() {
		return Money{}, decimal.Zero, errorf(ErrInvalidOperation, "rate must be greater than zero")
	}

	return money, rate, nil
}

func (a *Account) record(event Event) ([]Event, error) {
	if err := a.apply(event); err != nil {
		return nil, err
	}
	a.history = append(a.history, event)
	a.pending = append(a.pending, event)
	return []Event{event}, nil
}

// apply is the only place balances change, for replayed and new events alike.
func (a *Account) apply(event Event) error {
	switch e := event.(type) {
	case AccountRegistered:
		a.status = AccountStatusRegistered
		a.owner = e.Owner
		return a.credit(e.InitialDeposit)
	case CurrencyBought:
		if err := a.debit(e.Paid); err != nil {
			return err
		}
		return a.credit(e.Bought)
	case CurrencySold:
		if err := a.debit(e.Sold); err != nil {
			return err
		}
		return a.credit(e.Received)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}
}

func (a *Account) credit(amount Money) error {
	balance, ok := a.balances[amount.Currency()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, amount.Currency())
	}
	updated, err := balance.Add(amount)
	if err != nil {
		return err
	}
	a.balances[amount.Currency()] = updated
	return nil
}

func (a *Account) debit(amount Money) error {
	balance, ok := a.balances[amount.Currency()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, amount.Currency())
	}
	updated, err := balance.Sub(amount)
	if err != nil {
		return err
	}
	a.balances[amount.Currency()] = updated
	return nil
}

func (a *Account) timestamp(at time.Time) time.Time {
	if at.IsZero() {
		return a.clock.Now().UTC()
	}
	return at.UTC()
}
