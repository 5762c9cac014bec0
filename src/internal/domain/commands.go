package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterAccount struct {
	Timestamp      time.Time
	Owner          Owner
	InitialDeposit Money
}

// ExchangeMoney moves Amount of the foreign side between Source and Target.
// Rate is the ask price when buying foreign currency and the bid price when
// selling it.
type ExchangeMoney struct {
	Timestamp time.Time
	Amount    decimal.Decimal
	Source    Currency
	Target    Currency
	Rate      decimal.Decimal
}

type BuyCurrency struct {
	Timestamp time.Time
	Amount    decimal.Decimal
	Currency  Currency
	Rate      decimal.Decimal
}

type SellCurrency struct {
	Timestamp time.Time
	Amount    decimal.Decimal
	Currency  Currency
	Rate      decimal.Decimal
}

type ExchangeDirection int

const (
	DirectionBuy ExchangeDirection = iota + 1
	DirectionSell
)

// ClassifyExchange returns whether moving from source to target buys or
// sells foreign currency, and the foreign currency involved.
func ClassifyExchange(source Currency, target Currency) (ExchangeDirection, Currency, error) {
	switch {
	case !source.IsSupported() || !target.IsSupported():
		return 0, "", ErrUnsupportedCurrency
	case source == target:
		return 0, "", errorf(ErrInvalidOperation, "cannot exchange %s to itself", source)
	case source.IsBase():
		return DirectionBuy, target, nil
	case target.IsBase():
		return DirectionSell, source, nil
	default:
		return 0, "", errorf(ErrInvalidOperation, "exchange %s to %s must involve %s", source, target, BaseCurrency)
	}
}
