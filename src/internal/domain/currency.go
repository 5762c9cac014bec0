package domain

import (
	"fmt"
	"strings"
)

type Currency string

const (
	PLN Currency = "PLN"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
)

// BaseCurrency is the home currency every exchange has to route through.
const BaseCurrency = PLN

var supportedCurrencies = []Currency{PLN, USD, EUR, GBP, CHF}

// Currencies returns the supported currencies in a stable order.
func Currencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

func ParseCurrency(raw string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !code.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, raw)
	}
	return code, nil
}

func (c Currency) IsSupported() bool {
	for _, supported := range supportedCurrencies {
		if c == supported {
			return true
		}
	}
	return false
}

func (c Currency) IsBase() bool {
	return c == BaseCurrency
}

func (c Currency) String() string {
	return string(c)
}
