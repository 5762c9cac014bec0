package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

func TestQuantize(t *testing.T) {
	cases := []struct {
		in    string
		scale int32
		mode  domain.RoundingMode
		want  string
	}{
		{in: "10.129", scale: 2, mode: domain.RoundDown, want: "10.12"},
		{in: "-10.121", scale: 2, mode: domain.RoundDown, want: "-10.13"},
		{in: "10.121", scale: 2, mode: domain.RoundUp, want: "10.13"},
		{in: "10.12", scale: 2, mode: domain.RoundUp, want: "10.12"},
		{in: "4.12345", scale: 4, mode: domain.RoundHalfUp, want: "4.1235"},
		{in: "4.12344", scale: 4, mode: domain.RoundHalfUp, want: "4.1234"},
	}

	for _, tc := range cases {
		got := domain.Quantize(decimal.RequireFromString(tc.in), tc.scale, tc.mode)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "%s -> %s, got %s", tc.in, tc.want, got)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := domain.NewMoney(domain.PLN, decimal.RequireFromString("100.999"))
	assert.Equal(t, "100.99 PLN", a.String())

	sum, err := a.Add(domain.NewMoney(domain.PLN, decimal.RequireFromString("0.01")))
	require.NoError(t, err)
	assert.Equal(t, "101.00 PLN", sum.String())

	diff, err := sum.Sub(domain.NewMoney(domain.PLN, decimal.NewFromInt(200)))
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())

	_, err = a.Add(domain.NewMoney(domain.USD, decimal.NewFromInt(1)))
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestMoneyConvertRoundsPerMode(t *testing.T) {
	usd := domain.NewMoney(domain.USD, decimal.RequireFromString("10.01"))
	rate := decimal.RequireFromString("3.9999")

	assert.Equal(t, "40.04 PLN", usd.Convert(domain.PLN, rate, domain.RoundUp).String())
	assert.Equal(t, "40.03 PLN", usd.Convert(domain.PLN, rate, domain.RoundDown).String())
}

func TestParseCurrency(t *testing.T) {
	c, err := domain.ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, domain.USD, c)

	_, err = domain.ParseCurrency("JPY")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
	assert.True(t, domain.IsRejection(err))
}
