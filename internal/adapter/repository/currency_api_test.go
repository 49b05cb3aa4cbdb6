package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) (*CurrencyAPI, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewCurrencyAPI(srv.URL+"/", 2*time.Second, logger.NewLogger("debug"), m), m
}

func TestCurrencyAPI_FetchRates(t *testing.T) {
	var calls atomic.Int32
	api, m := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/usd.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"date":"2026-10-14","usd":{"usd":1.02,"eur":0.92,"jpy":149.5,"gbp":0.79,"bad":-3}}`))
	})

	rates, err := api.FetchRates(context.Background(), "usd", []model.Currency{"EUR", "jpy", "CHF", "USD", "BAD"})
	require.NoError(t, err)

	assert.Equal(t, map[model.Currency]float64{
		"USD": 1,
		"EUR": 0.92,
		"JPY": 149.5,
	}, rates)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateFetchesTotal.WithLabelValues("USD", "ok")))
}

func TestCurrencyAPI_FetchRates_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: model.ErrRatesUnavailable,
		},
		{
			name: "unparsable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			want: model.ErrMalformedResponse,
		},
		{
			name: "missing base key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"date":"2026-10-14","eur":{"usd":1.08}}`))
			},
			want: model.ErrMalformedResponse,
		},
		{
			name: "non-numeric table",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"usd":{"eur":"cheap"}}`))
			},
			want: model.ErrMalformedResponse,
		},
		{
			name: "null table",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"usd":null}`))
			},
			want: model.ErrMalformedResponse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api, m := newTestAPI(t, tc.handler)

			rates, err := api.FetchRates(context.Background(), "USD", []model.Currency{"EUR"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Nil(t, rates)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.RateFetchesTotal.WithLabelValues("USD", "error")))
		})
	}
}

func TestCurrencyAPI_FetchRates_Timeout(t *testing.T) {
	release := make(chan struct{})
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := api.FetchRates(ctx, "USD", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRatesUnavailable)
}

func TestCurrencyAPI_BaseAlwaysOne(t *testing.T) {
	api, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"eur":{"eur":0.999,"usd":1.08}}`))
	})

	rates, err := api.FetchRates(context.Background(), "EUR", []model.Currency{"EUR", "USD"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, rates["EUR"])
	assert.Equal(t, 1.08, rates["USD"])
}
