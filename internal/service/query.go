package service

import "world-rates-service/internal/domain/model"

// Rate converts one unit of from into to using cache. Expired records are
// still used. It returns 0 when neither direction is cached.
func Rate(from, to model.Currency, cache model.RateCache) float64 {
	from = model.NormalizeCurrency(string(from))
	to = model.NormalizeCurrency(string(to))
	if from == to {
		return 1
	}

	if rec, ok := cache[from]; ok {
		if r, ok := rec.Rates[to]; ok {
			return r
		}
	}

	if rec, ok := cache[to]; ok {
		if r, ok := rec.Rates[from]; ok && r != 0 {
			return 1 / r
		}
	}

	return 0
}
