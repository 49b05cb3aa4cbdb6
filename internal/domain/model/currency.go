package model

import "strings"

// Currency is an uppercase three-letter currency code such as "USD".
type Currency string

// NormalizeCurrency trims and upper-cases a raw code.
func NormalizeCurrency(raw string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(raw)))
}

// Lower returns the code in the provider's lowercase form.
func (c Currency) Lower() string {
	return strings.ToLower(string(c))
}

func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (c Currency) String() string {
	return string(c)
}

// UniqueCurrencies normalizes codes and removes duplicates and blanks,
// keeping first-seen order.
func UniqueCurrencies(codes []Currency) []Currency {
	seen := make(map[Currency]struct{}, len(codes))
	out := make([]Currency, 0, len(codes))
	for _, code := range codes {
		c := NormalizeCurrency(string(code))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ParseCurrencies splits a comma-separated list such as "usd, EUR".
func ParseCurrencies(list string) []Currency {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	codes := make([]Currency, 0, len(parts))
	for _, p := range parts {
		codes = append(codes, Currency(p))
	}
	return UniqueCurrencies(codes)
}
