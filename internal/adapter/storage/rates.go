package storage

import (
	"context"
	"encoding/json"
	"errors"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"
)

var ratesPath = []string{"world_rates", "selected_rates"}

// RateStore persists the rate cache under world_rates.selected_rates.
type RateStore struct {
	doc     *Document
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRateStore(doc *Document, log *logger.Logger, m *metrics.Metrics) *RateStore {
	return &RateStore{doc: doc, log: log, metrics: m}
}

// Load never fails: a missing, unreadable or corrupt field is an empty cache.
func (s *RateStore) Load(ctx context.Context) model.RateCache {
	raw, err := s.doc.ReadField(ctx, ratesPath...)
	if err != nil {
		s.recordError("load", err)
		return model.RateCache{}
	}
	if raw == nil {
		return model.RateCache{}
	}

	var cache model.RateCache
	if err := json.Unmarshal(raw, &cache); err != nil {
		s.recordError("load", errors.Join(model.ErrStoreCorrupt, err))
		return model.RateCache{}
	}
	if cache == nil {
		cache = model.RateCache{}
	}

	s.log.Debug("Loaded rate cache", "currencies", len(cache))
	return cache
}

func (s *RateStore) Save(ctx context.Context, cache model.RateCache) error {
	if cache == nil {
		cache = model.RateCache{}
	}
	if err := s.doc.WriteField(ctx, cache, ratesPath...); err != nil {
		s.recordError("save", err)
		return err
	}
	s.log.Debug("Saved rate cache", "currencies", len(cache))
	return nil
}

func (s *RateStore) recordError(op string, err error) {
	s.log.Error("Rate store failure", "op", op, "error", err, "corrupt", errors.Is(err, model.ErrStoreCorrupt))
	if s.metrics != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("rates_" + op).Inc()
	}
}
