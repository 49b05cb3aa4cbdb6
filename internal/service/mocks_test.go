package service

import (
	"context"
	"sync"
	"time"

	"world-rates-service/internal/domain/model"
)

type MockRateFetcher struct {
	FetchRatesFunc func(ctx context.Context, base model.Currency, wanted []model.Currency) (map[model.Currency]float64, error)

	mu    sync.Mutex
	calls map[model.Currency]int
}

func (m *MockRateFetcher) FetchRates(ctx context.Context, base model.Currency, wanted []model.Currency) (map[model.Currency]float64, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[model.Currency]int)
	}
	m.calls[base]++
	m.mu.Unlock()
	return m.FetchRatesFunc(ctx, base, wanted)
}

func (m *MockRateFetcher) Calls(base model.Currency) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[base]
}

func (m *MockRateFetcher) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

type MockRateStore struct {
	LoadFunc func(ctx context.Context) model.RateCache
	SaveFunc func(ctx context.Context, cache model.RateCache) error

	mu    sync.Mutex
	saved []model.RateCache
}

func (m *MockRateStore) Load(ctx context.Context) model.RateCache {
	if m.LoadFunc == nil {
		return model.RateCache{}
	}
	return m.LoadFunc(ctx)
}

func (m *MockRateStore) Save(ctx context.Context, cache model.RateCache) error {
	m.mu.Lock()
	m.saved = append(m.saved, cache)
	m.mu.Unlock()
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(ctx, cache)
}

func (m *MockRateStore) Saved() []model.RateCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RateCache(nil), m.saved...)
}

type MockRateEngine struct {
	EvaluateFunc func(ctx context.Context, currencies []model.Currency)
	RefreshFunc  func(ctx context.Context, currencies []model.Currency)
	ConvertFunc  func(from, to model.Currency) float64
}

func (m *MockRateEngine) Evaluate(ctx context.Context, currencies []model.Currency) {
	if m.EvaluateFunc != nil {
		m.EvaluateFunc(ctx, currencies)
	}
}

func (m *MockRateEngine) Refresh(ctx context.Context, currencies []model.Currency) {
	if m.RefreshFunc != nil {
		m.RefreshFunc(ctx, currencies)
	}
}

func (m *MockRateEngine) Status() model.SyncStatus { return model.SyncStatus{} }

func (m *MockRateEngine) Snapshot() model.RateCache { return model.RateCache{} }

func (m *MockRateEngine) Convert(from, to model.Currency) float64 {
	if m.ConvertFunc == nil {
		return 0
	}
	return m.ConvertFunc(from, to)
}

func (m *MockRateEngine) Subscribe() (<-chan model.SyncEvent, func()) {
	ch := make(chan model.SyncEvent)
	return ch, func() {}
}

type MockCountryStore struct {
	mu        sync.Mutex
	countries []model.Country
	stored    bool
	SaveErr   error
}

func (m *MockCountryStore) Load(ctx context.Context) ([]model.Country, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stored {
		return nil, false
	}
	return append([]model.Country(nil), m.countries...), true
}

func (m *MockCountryStore) Save(ctx context.Context, countries []model.Country) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countries = append([]model.Country(nil), countries...)
	m.stored = true
	return nil
}

var testNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}
