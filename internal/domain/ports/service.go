package ports

import (
	"context"
	"time"

	"world-rates-service/internal/domain/model"
)

// RateEngine is the surface the presentation layer consumes.
type RateEngine interface {
	Evaluate(ctx context.Context, currencies []model.Currency)
	Refresh(ctx context.Context, currencies []model.Currency)
	Status() model.SyncStatus
	Snapshot() model.RateCache
	Convert(from, to model.Currency) float64
	Subscribe() (<-chan model.SyncEvent, func())
}

type CountrySelector interface {
	Selected(ctx context.Context) []model.Country
	Currencies(ctx context.Context) []model.Currency
	Add(ctx context.Context, code string) (model.Country, error)
	Remove(ctx context.Context, code string) error
}

// Clock is the single time source for expiry decisions.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
