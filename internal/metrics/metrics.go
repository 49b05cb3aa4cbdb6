package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RateFetchesTotal        *prometheus.CounterVec
	RateFetchDuration       prometheus.Histogram
	SyncBatchesTotal        *prometheus.CounterVec
	SyncDroppedTotal        prometheus.Counter
	SyncInProgress          prometheus.Gauge
	CachedCurrencies        prometheus.Gauge
	StoreErrorsTotal        *prometheus.CounterVec
	ConversionRequestsTotal prometheus.Counter
	RefreshRequestsTotal    prometheus.Counter
}

// NewMetrics registers every collector on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RateFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_fetches_total",
				Help: "Total number of per-base rate fetches by result",
			},
			[]string{"base", "result"},
		),

		RateFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_fetch_duration_seconds",
				Help:    "Duration of a single rate provider call",
				Buckets: prometheus.DefBuckets,
			},
		),

		SyncBatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_batches_total",
				Help: "Total number of sync batches by trigger and outcome",
			},
			[]string{"kind", "synced"},
		),

		SyncDroppedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sync_dropped_total",
				Help: "Sync requests dropped because a batch was already in flight",
			},
		),

		SyncInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sync_in_progress",
				Help: "1 while a sync batch is in flight",
			},
		),

		CachedCurrencies: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cached_currencies",
				Help: "Number of base currencies held in the rate cache",
			},
		),

		StoreErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_errors_total",
				Help: "Durable store failures by operation",
			},
			[]string{"op"},
		),

		ConversionRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
		),

		RefreshRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "refresh_requests_total",
				Help: "Total number of user-triggered refresh requests",
			},
		),
	}
}
