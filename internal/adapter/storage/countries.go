package storage

import (
	"context"
	"encoding/json"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"
)

var countriesPath = []string{"world_time", "selected_countries"}

// CountryStore persists the selected countries under
// world_time.selected_countries.
type CountryStore struct {
	doc     *Document
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewCountryStore(doc *Document, log *logger.Logger, m *metrics.Metrics) *CountryStore {
	return &CountryStore{doc: doc, log: log, metrics: m}
}

// Load reports false when no selection has ever been stored or the stored
// one cannot be read.
func (s *CountryStore) Load(ctx context.Context) ([]model.Country, bool) {
	raw, err := s.doc.ReadField(ctx, countriesPath...)
	if err != nil {
		s.recordError("load", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var countries []model.Country
	if err := json.Unmarshal(raw, &countries); err != nil {
		s.recordError("load", err)
		return nil, false
	}
	return countries, true
}

func (s *CountryStore) Save(ctx context.Context, countries []model.Country) error {
	if countries == nil {
		countries = []model.Country{}
	}
	if err := s.doc.WriteField(ctx, countries, countriesPath...); err != nil {
		s.recordError("save", err)
		return err
	}
	return nil
}

func (s *CountryStore) recordError(op string, err error) {
	s.log.Error("Country store failure", "op", op, "error", err)
	if s.metrics != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("countries_" + op).Inc()
	}
}
