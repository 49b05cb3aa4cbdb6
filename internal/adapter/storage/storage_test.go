package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-rates-service/internal/adapter/cache"
	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"
)

type failingBackend struct {
	readErr  error
	writeErr error
	doc      []byte
}

func (f *failingBackend) Read(ctx context.Context, key string) ([]byte, error) {
	return f.doc, f.readErr
}

func (f *failingBackend) Write(ctx context.Context, key string, doc []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.doc = doc
	return nil
}

func newTestDocument(t *testing.T, initial string) (*Document, *cache.MemoryCache) {
	t.Helper()
	log := logger.NewLogger("debug")
	backend := cache.NewMemoryCache(log)
	if initial != "" {
		require.NoError(t, backend.Write(context.Background(), "settings", []byte(initial)))
	}
	return NewDocument(backend, "settings", log), backend
}

func readRoot(t *testing.T, backend *cache.MemoryCache) map[string]any {
	t.Helper()
	raw, err := backend.Read(context.Background(), "settings")
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, json.Unmarshal(raw, &root))
	return root
}

func TestDocument_WriteFieldPreservesSiblings(t *testing.T) {
	doc, backend := newTestDocument(t, `{
		"theme": "dark",
		"world_time": {"selected_countries": [{"code": "JP"}], "format": "24h"},
		"world_rates": {"selected_rates": {}, "base": "USD"}
	}`)

	require.NoError(t, doc.WriteField(context.Background(), map[string]int{"x": 1}, "world_rates", "selected_rates"))

	root := readRoot(t, backend)
	assert.Equal(t, "dark", root["theme"])
	worldTime := root["world_time"].(map[string]any)
	assert.Equal(t, "24h", worldTime["format"])
	assert.Len(t, worldTime["selected_countries"], 1)
	worldRates := root["world_rates"].(map[string]any)
	assert.Equal(t, "USD", worldRates["base"])
	assert.Equal(t, map[string]any{"x": float64(1)}, worldRates["selected_rates"])
}

func TestDocument_ReadField(t *testing.T) {
	doc, _ := newTestDocument(t, `{"a":{"b":{"c":42}},"s":"text"}`)
	ctx := context.Background()

	raw, err := doc.ReadField(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, "42", string(raw))

	raw, err = doc.ReadField(ctx, "a", "missing")
	require.NoError(t, err)
	assert.Nil(t, raw)

	_, err = doc.ReadField(ctx, "s", "inner")
	assert.ErrorIs(t, err, model.ErrStoreCorrupt)

	_, err = doc.ReadField(ctx)
	assert.Error(t, err)
}

func TestDocument_WriteFieldReplacesCorruptDocument(t *testing.T) {
	doc, backend := newTestDocument(t, `{not json`)

	require.NoError(t, doc.WriteField(context.Background(), []string{"a"}, "world_time", "selected_countries"))

	root := readRoot(t, backend)
	assert.Equal(t, map[string]any{"selected_countries": []any{"a"}}, root["world_time"])
}

func TestDocument_BackendErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	doc := NewDocument(&failingBackend{readErr: boom}, "settings", logger.NewLogger("debug"))

	_, err := doc.ReadField(context.Background(), "a")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, doc.WriteField(context.Background(), 1, "a"), boom)

	doc = NewDocument(&failingBackend{writeErr: boom}, "settings", logger.NewLogger("debug"))
	assert.ErrorIs(t, doc.WriteField(context.Background(), 1, "a"), boom)
}

func TestRateStore_RoundTripKeepsCountries(t *testing.T) {
	doc, backend := newTestDocument(t, `{"world_time":{"selected_countries":[{"code":"US","currency":{"code":"USD"}}]}}`)
	store := NewRateStore(doc, logger.NewLogger("debug"), nil)
	ctx := context.Background()

	assert.Empty(t, store.Load(ctx))

	expires := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	input := model.RateCache{
		"USD": {Rates: map[model.Currency]float64{"USD": 1, "EUR": 0.92}, ExpiresAt: expires},
	}
	require.NoError(t, store.Save(ctx, input))

	loaded := store.Load(ctx)
	require.Contains(t, loaded, model.Currency("USD"))
	assert.Equal(t, input["USD"].Rates, loaded["USD"].Rates)
	assert.True(t, loaded["USD"].ExpiresAt.Equal(expires))

	countries, ok := NewCountryStore(doc, logger.NewLogger("debug"), nil).Load(ctx)
	require.True(t, ok)
	require.Len(t, countries, 1)
	assert.Equal(t, "US", countries[0].Code)

	root := readRoot(t, backend)
	assert.Contains(t, root, "world_time")
}

func TestRateStore_CorruptDegradesToEmpty(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"garbage document", `definitely not json`},
		{"rates not an object", `{"world_rates":{"selected_rates":[1,2,3]}}`},
		{"namespace not an object", `{"world_rates":"oops"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, _ := newTestDocument(t, tc.doc)
			m := metrics.NewMetrics(prometheus.NewRegistry())
			store := NewRateStore(doc, logger.NewLogger("debug"), m)

			got := store.Load(context.Background())
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("rates_load")))
		})
	}
}

func TestCountryStore_SaveKeepsRates(t *testing.T) {
	doc, _ := newTestDocument(t, `{"world_rates":{"selected_rates":{"EUR":{"rates":{"EUR":1},"expired_at":1}}}}`)
	ctx := context.Background()
	countries := NewCountryStore(doc, logger.NewLogger("debug"), nil)

	_, ok := countries.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, countries.Save(ctx, []model.Country{{Code: "DE", Currency: model.CurrencyInfo{Code: "EUR"}}}))
	got, ok := countries.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "DE", got[0].Code)

	rates := NewRateStore(doc, logger.NewLogger("debug"), nil).Load(ctx)
	assert.Equal(t, 1.0, rates["EUR"].Rates["EUR"])
}

func TestCountryStore_SaveNilStoresEmptyList(t *testing.T) {
	doc, _ := newTestDocument(t, "")
	countries := NewCountryStore(doc, logger.NewLogger("debug"), nil)

	require.NoError(t, countries.Save(context.Background(), nil))
	got, ok := countries.Load(context.Background())
	assert.True(t, ok)
	assert.Empty(t, got)
}
