package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TransactionInitialDeposit = "INITIAL_DEPOSIT"
	TransactionCurrencyBought = "CURRENCY_BOUGHT"
	TransactionCurrencySold   = "CURRENCY_SOLD"
)

type OwnerDTO struct {
	Pesel     string `json:"pesel"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type RegisterAccountRequest struct {
	Owner          OwnerDTO        `json:"owner"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
}

func (r RegisterAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Owner.Pesel) == "" {
		errs = append(errs, "owner.pesel is required")
	}
	if strings.TrimSpace(r.Owner.FirstName) == "" {
		errs = append(errs, "owner.firstName is required")
	}
	if strings.TrimSpace(r.Owner.LastName) == "" {
		errs = append(errs, "owner.lastName is required")
	}
	if r.InitialDeposit.IsNegative() {
		errs = append(errs, "initialDeposit cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type ExchangeMoneyRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	SourceCurrency string          `json:"sourceCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
}

func (r ExchangeMoneyRequest) Validate() error {
	var errs []string

	if !r.Amount.IsPositive() {
		errs = append(errs, "amount must be greater than zero")
	}

	source := strings.ToUpper(strings.TrimSpace(r.SourceCurrency))
	target := strings.ToUpper(strings.TrimSpace(r.TargetCurrency))
	if source == "" {
		errs = append(errs, "sourceCurrency is required")
	} else if len(source) != 3 {
		errs = append(errs, "sourceCurrency must be 3 characters")
	}
	if target == "" {
		errs = append(errs, "targetCurrency is required")
	} else if len(target) != 3 {
		errs = append(errs, "targetCurrency must be 3 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type SubAccountResponse struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

type AccountDetailsResponse struct {
	Owner       OwnerDTO             `json:"owner"`
	SubAccounts []SubAccountResponse `json:"subAccounts"`
}

// TransactionResponse is one entry of the account history. Amount and Rate
// are set for exchanges, InitialDeposit only for INITIAL_DEPOSIT.
type TransactionResponse struct {
	Type           string `json:"type"`
	Timestamp      string `json:"timestamp"`
	Currency       string `json:"currency,omitempty"`
	Amount         string `json:"amount,omitempty"`
	Rate           string `json:"rate,omitempty"`
	BaseAmount     string `json:"baseAmount,omitempty"`
	InitialDeposit string `json:"initialDeposit,omitempty"`
}

type AccountTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}
