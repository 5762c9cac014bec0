package models

// RateResponse quotes one foreign currency in the base currency. Ask is what
// a customer pays when buying, Bid what they receive when selling.
type RateResponse struct {
	Currency     string `json:"currency"`
	BaseCurrency string `json:"baseCurrency"`
	Bid          string `json:"bid"`
	Ask          string `json:"ask"`
}
