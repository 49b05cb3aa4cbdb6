// Package reference holds the static list of countries and the currencies
// they use.
package reference

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"world-rates-service/internal/domain/model"
)

//go:embed countries.json
var countriesJSON []byte

type Registry struct {
	countries  []model.Country
	byCode     map[string]model.Country
	currencies map[model.Currency]model.CurrencyInfo
}

// Default returns the registry built from the embedded country list.
func Default() *Registry {
	r, err := Parse(countriesJSON)
	if err != nil {
		panic(fmt.Sprintf("reference: embedded countries: %v", err))
	}
	return r
}

func Parse(data []byte) (*Registry, error) {
	var countries []model.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	return New(countries)
}

func New(countries []model.Country) (*Registry, error) {
	r := &Registry{
		countries:  make([]model.Country, 0, len(countries)),
		byCode:     make(map[string]model.Country, len(countries)),
		currencies: make(map[model.Currency]model.CurrencyInfo),
	}
	for _, c := range countries {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		c.Currency.Code = model.NormalizeCurrency(string(c.Currency.Code))
		if c.Code == "" {
			return nil, fmt.Errorf("country %q has no code", c.Name)
		}
		if !c.Currency.Code.IsValid() {
			return nil, fmt.Errorf("country %s has invalid currency %q", c.Code, c.Currency.Code)
		}
		if _, dup := r.byCode[c.Code]; dup {
			return nil, fmt.Errorf("duplicate country code %s", c.Code)
		}
		r.byCode[c.Code] = c
		r.countries = append(r.countries, c)
		if _, ok := r.currencies[c.Currency.Code]; !ok {
			r.currencies[c.Currency.Code] = c.Currency
		}
	}
	return r, nil
}

func (r *Registry) Countries() []model.Country {
	out := make([]model.Country, len(r.countries))
	copy(out, r.countries)
	return out
}

func (r *Registry) Country(code string) (model.Country, bool) {
	c, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// IsKnownCurrency reports whether any country in the registry uses code.
func (r *Registry) IsKnownCurrency(code model.Currency) bool {
	_, ok := r.currencies[model.NormalizeCurrency(string(code))]
	return ok
}

func (r *Registry) Currency(code model.Currency) (model.CurrencyInfo, bool) {
	info, ok := r.currencies[model.NormalizeCurrency(string(code))]
	return info, ok
}
