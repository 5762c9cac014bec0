// Package codec turns domain events into JSON payloads carrying a "type"
// discriminator and back.
package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

type envelope struct {
	Type domain.EventType `json:"type"`
}

type ownerPayload struct {
	Pesel     string `json:"pesel"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type moneyPayload struct {
	Currency domain.Currency `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type accountRegisteredPayload struct {
	Type           domain.EventType `json:"type"`
	Timestamp      time.Time        `json:"timestamp"`
	Owner          ownerPayload     `json:"owner"`
	InitialDeposit moneyPayload     `json:"initialDeposit"`
}

type currencyBoughtPayload struct {
	Type      domain.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Bought    moneyPayload     `json:"bought"`
	Rate      decimal.Decimal  `json:"rate"`
	Paid      moneyPayload     `json:"paid"`
}

type currencySoldPayload struct {
	Type      domain.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Sold      moneyPayload     `json:"sold"`
	Rate      decimal.Decimal  `json:"rate"`
	Received  moneyPayload     `json:"received"`
}

type decoder func(payload []byte) (domain.Event, error)

var decoders = map[domain.EventType]decoder{
	domain.EventAccountRegistered: decodeAccountRegistered,
	domain.EventCurrencyBought:    decodeCurrencyBought,
	domain.EventCurrencySold:      decodeCurrencySold,
}

// Supports reports whether a decoder is registered for eventType.
func Supports(eventType domain.EventType) bool {
	_, ok := decoders[eventType]
	return ok
}

func Encode(event domain.Event) ([]byte, error) {
	var payload any
	switch e := event.(type) {
	case domain.AccountRegistered:
		payload = accountRegisteredPayload{
			Type:      e.Type(),
			Timestamp: e.Timestamp.UTC(),
			Owner: ownerPayload{
				Pesel:     e.Owner.Pesel.String(),
				FirstName: e.Owner.FirstName,
				LastName:  e.Owner.LastName,
			},
			InitialDeposit: fromMoney(e.InitialDeposit),
		}
	case domain.CurrencyBought:
		payload = currencyBoughtPayload{
			Type:      e.Type(),
			Timestamp: e.Timestamp.UTC(),
			Bought:    fromMoney(e.Bought),
			Rate:      e.Rate,
			Paid:      fromMoney(e.Paid),
		}
	case domain.CurrencySold:
		payload = currencySoldPayload{
			Type:      e.Type(),
			Timestamp: e.Timestamp.UTC(),
			Sold:      fromMoney(e.Sold),
			Rate:      e.Rate,
			Received:  fromMoney(e.Received),
		}
	default:
		return nil, fmt.Errorf("encode event: %w: %T", domain.ErrUnknownEvent, event)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type(), err)
	}
	return b, nil
}

func Decode(payload []byte) (domain.Event, error) {
	var head envelope
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, fmt.Errorf("decode event type: %w", err)
	}

	decode, ok := decoders[head.Type]
	if !ok {
		return nil, fmt.Errorf("decode event: %w: %q", domain.ErrUnknownEvent, head.Type)
	}

	event, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", head.Type, err)
	}
	return event, nil
}

// Checksum is the BLAKE2b-256 digest of a payload, hex encoded.
func Checksum(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Verify fails with domain.ErrCorruptedEvent when payload no longer matches
// the checksum recorded at append time.
func Verify(payload []byte, checksum string) error {
	if Checksum(payload) != checksum {
		return domain.ErrCorruptedEvent
	}
	return nil
}

func decodeAccountRegistered(payload []byte) (domain.Event, error) {
	var p accountRegisteredPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	pesel, err := domain.ParsePesel(p.Owner.Pesel)
	if err != nil {
		return nil, err
	}
	owner, err := domain.NewOwner(pesel, p.Owner.FirstName, p.Owner.LastName)
	if err != nil {
		return nil, err
	}
	deposit, err := p.InitialDeposit.toMoney()
	if err != nil {
		return nil, err
	}

	return domain.AccountRegistered{Timestamp: p.Timestamp, Owner: owner, InitialDeposit: deposit}, nil
}

func decodeCurrencyBought(payload []byte) (domain.Event, error) {
	var p currencyBoughtPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	bought, err := p.Bought.toMoney()
	if err != nil {
		return nil, err
	}
	paid, err := p.Paid.toMoney()
	if err != nil {
		return nil, err
	}

	return domain.CurrencyBought{Timestamp: p.Timestamp, Bought: bought, Rate: p.Rate, Paid: paid}, nil
}

func decodeCurrencySold(payload []byte) (domain.Event, error) {
	var p currencySoldPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	sold, err := p.Sold.toMoney()
	if err != nil {
		return nil, err
	}
	received, err := p.Received.toMoney()
	if err != nil {
		return nil, err
	}

	return domain.CurrencySold{Timestamp: p.Timestamp, Sold: sold, Rate: p.Rate, Received: received}, nil
}

func fromMoney(m domain.Money) moneyPayload {
	return moneyPayload{Currency: m.Currency(), Amount: m.Amount()}
}

func (p moneyPayload) toMoney() (domain.Money, error) {
	currency, err := domain.ParseCurrency(string(p.Currency))
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(currency, p.Amount), nil
}
