package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of decimal places every stored amount carries.
	MoneyScale int32 = 2
	// RateScale is the precision externally supplied rates are normalised to.
	RateScale int32 = 4
)

type RoundingMode int

const (
	// RoundDown rounds toward negative infinity.
	RoundDown RoundingMode = iota
	// RoundUp rounds toward positive infinity.
	RoundUp
	// RoundHalfUp rounds half away from zero.
	RoundHalfUp
)

// Quantize is the single rounding point for amounts and rates.
func Quantize(value decimal.Decimal, scale int32, mode RoundingMode) decimal.Decimal {
	switch mode {
	case RoundDown:
		return value.RoundFloor(scale)
	case RoundUp:
		return value.RoundCeil(scale)
	case RoundHalfUp:
		return value.Round(scale)
	default:
		panic(fmt.Sprintf("domain: unknown rounding mode %d", mode))
	}
}

// NormalizeRate rounds a quoted rate half-up to RateScale.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	return Quantize(rate, RateScale, RoundHalfUp)
}

// Money is an immutable currency-tagged amount.
type Money struct {
	currency Currency
	amount   decimal.Decimal
}

// NewMoney quantizes amount down to MoneyScale.
func NewMoney(currency Currency, amount decimal.Decimal) Money {
	return Money{currency: currency, amount: Quantize(amount, MoneyScale, RoundDown)}
}

func ZeroMoney(currency Currency) Money {
	return NewMoney(currency, decimal.Zero)
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.currency, m.amount.Add(other.amount)), nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.currency, m.amount.Sub(other.amount)), nil
}

func (m Money) LessThan(other Money) bool {
	return m.currency == other.currency && m.amount.LessThan(other.amount)
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Convert multiplies by rate into target, rounding with mode.
func (m Money) Convert(target Currency, rate decimal.Decimal, mode RoundingMode) Money {
	return Money{currency: target, amount: Quantize(m.amount.Mul(rate), MoneyScale, mode)}
}

func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale) + " " + string(m.currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}
