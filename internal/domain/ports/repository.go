package ports

import (
	"context"

	"world-rates-service/internal/domain/model"
)

// RateFetcher retrieves the current rate table for one base currency.
type RateFetcher interface {
	FetchRates(ctx context.Context, base model.Currency, wanted []model.Currency) (map[model.Currency]float64, error)
}
