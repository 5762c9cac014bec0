package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAccountRegistered EventType = "AccountRegistered"
	EventCurrencyBought    EventType = "CurrencyBought"
	EventCurrencySold      EventType = "CurrencySold"
)

// EventTypes lists every event variant. Codecs and tests iterate over it,
// so a new variant without a decoder or an apply branch fails loudly.
var EventTypes = []EventType{
	EventAccountRegistered,
	EventCurrencyBought,
	EventCurrencySold,
}

// Event is the closed set of facts recorded for an account.
type Event interface {
	Type() EventType
	OccurredAt() time.Time
	sealed()
}

type AccountRegistered struct {
	Timestamp      time.Time
	Owner          Owner
	InitialDeposit Money
}

// CurrencyBought records a purchase of a foreign currency paid for in the
// base currency. Paid is the exact base-currency debit.
type CurrencyBought struct {
	Timestamp time.Time
	Bought    Money
	Rate      decimal.Decimal
	Paid      Money
}

// CurrencySold records a sale of a foreign currency for the base currency.
// Received is the exact base-currency credit.
type CurrencySold struct {
	Timestamp time.Time
	Sold      Money
	Rate      decimal.Decimal
	Received  Money
}

func (e AccountRegistered) Type() EventType       { return EventAccountRegistered }
func (e AccountRegistered) OccurredAt() time.Time { return e.Timestamp }
func (AccountRegistered) sealed()                 {}

func (e CurrencyBought) Type() EventType       { return EventCurrencyBought }
func (e CurrencyBought) OccurredAt() time.Time { return e.Timestamp }
func (CurrencyBought) sealed()                 {}

func (e CurrencySold) Type() EventType       { return EventCurrencySold }
func (e CurrencySold) OccurredAt() time.Time { return e.Timestamp }
func (CurrencySold) sealed()                 {}
