package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"world-rates-service/internal/domain/model"
)

func TestRate(t *testing.T) {
	cache := model.RateCache{
		"USD": {Rates: map[model.Currency]float64{"USD": 1, "EUR": 0.8, "JPY": 150}, ExpiresAt: testNow.Add(-48 * time.Hour)},
		"GBP": {Rates: map[model.Currency]float64{"GBP": 1, "CHF": 0}},
	}

	testCases := []struct {
		name string
		from model.Currency
		to   model.Currency
		want float64
	}{
		{"identity without data", "XYZ", "XYZ", 1},
		{"identity case-insensitive", "usd", "USD", 1},
		{"direct", "USD", "EUR", 0.8},
		{"direct from stale record", "USD", "JPY", 150},
		{"inverse", "EUR", "USD", 1.25},
		{"inverse of zero is unknown", "CHF", "GBP", 0},
		{"direct zero is returned as is", "GBP", "CHF", 0},
		{"unknown pair", "EUR", "JPY", 0},
		{"lowercase input", "eur", "usd", 1.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Rate(tc.from, tc.to, cache), 1e-12)
		})
	}
}

func TestRate_IdentityOnEmptyCache(t *testing.T) {
	for _, c := range []model.Currency{"USD", "EUR", "JPY"} {
		assert.Equal(t, 1.0, Rate(c, c, nil))
	}
}

func TestRate_PrefersDirectOverInverse(t *testing.T) {
	cache := model.RateCache{
		"USD": {Rates: map[model.Currency]float64{"EUR": 0.9}},
		"EUR": {Rates: map[model.Currency]float64{"USD": 1.2}},
	}
	assert.Equal(t, 0.9, Rate("USD", "EUR", cache))
	assert.Equal(t, 1.2, Rate("EUR", "USD", cache))
}
