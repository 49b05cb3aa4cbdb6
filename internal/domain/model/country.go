package model

type CurrencyInfo struct {
	Code   Currency `json:"code"`
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
}

// Country is one entry of the world-time reference list together with the
// currency it uses.
type Country struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Timezone string       `json:"timezone"`
	Offset   float64      `json:"offset"`
	Icon     string       `json:"icon,omitempty"`
	Currency CurrencyInfo `json:"currency"`
}

// CountryCurrencies returns the distinct currencies used by countries.
func CountryCurrencies(countries []Country) []Currency {
	codes := make([]Currency, 0, len(countries))
	for _, c := range countries {
		codes = append(codes, c.Currency.Code)
	}
	return UniqueCurrencies(codes)
}
