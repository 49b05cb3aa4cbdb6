package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"
)

const maxBodyBytes = 4 << 20

// CurrencyAPI fetches per-base rate tables from the fawazahmed0
// currency-api, where {base}/{code}.json returns {"date": ..., "{code}": {...}}.
type CurrencyAPI struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewCurrencyAPI(baseURL string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *CurrencyAPI {
	return &CurrencyAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: m,
	}
}

// FetchRates issues one GET for base and returns the wanted targets it
// found, plus base itself at exactly 1.
func (c *CurrencyAPI) FetchRates(ctx context.Context, base model.Currency, wanted []model.Currency) (map[model.Currency]float64, error) {
	base = model.NormalizeCurrency(string(base))
	start := time.Now()

	table, err := c.fetchTable(ctx, base)

	if c.metrics != nil {
		c.metrics.RateFetchDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.RateFetchesTotal.WithLabelValues(base.String(), result).Inc()
	}
	if err != nil {
		return nil, err
	}

	rates := make(map[model.Currency]float64, len(wanted)+1)
	for _, target := range wanted {
		target = model.NormalizeCurrency(string(target))
		value, ok := table[target.Lower()]
		if !ok || value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
			continue
		}
		rates[target] = value
	}
	rates[base] = 1

	c.log.Debug("Fetched rates", "base", base.String(), "targets", len(rates))
	return rates, nil
}

func (c *CurrencyAPI) fetchTable(ctx context.Context, base model.Currency) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s.json", c.baseURL, base.Lower())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", model.ErrRatesUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", model.ErrRatesUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: API returned non-OK status: %d", model.ErrRatesUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", model.ErrRatesUnavailable, err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", model.ErrMalformedResponse, err)
	}

	raw, ok := envelope[base.Lower()]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q table", model.ErrMalformedResponse, base.Lower())
	}

	var table map[string]float64
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %q table: %v", model.ErrMalformedResponse, base.Lower(), err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: %q table is null", model.ErrMalformedResponse, base.Lower())
	}
	return table, nil
}
