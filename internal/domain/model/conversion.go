package model

type ConversionRequest struct {
	FromCurrency Currency `json:"from_currency"`
	ToCurrency   Currency `json:"to_currency"`
	Amount       float64  `json:"amount"`
}

// ConversionResult carries Rate 0 and Available false when no cached
// table links the two currencies.
type ConversionResult struct {
	FromCurrency Currency `json:"from_currency"`
	ToCurrency   Currency `json:"to_currency"`
	FromAmount   float64  `json:"from_amount"`
	ToAmount     float64  `json:"to_amount"`
	Rate         float64  `json:"rate"`
	Available    bool     `json:"available"`
	Display      string   `json:"display"`
}
