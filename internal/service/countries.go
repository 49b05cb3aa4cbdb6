package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/domain/ports"
	"world-rates-service/internal/reference"
	"world-rates-service/pkg/logger"
)

var (
	ErrUnknownCountry     = errors.New("unknown country")
	ErrCountryExists      = errors.New("country already selected")
	ErrCountryNotSelected = errors.New("country not selected")
)

// CountryService manages the selected countries. Every change re-evaluates
// the rates of the resulting currency set in the background.
type CountryService struct {
	store    ports.CountryStore
	registry *reference.Registry
	engine   ports.RateEngine
	defaults []model.Country
	log      *logger.Logger

	mu sync.Mutex
}

func NewCountryService(
	store ports.CountryStore,
	registry *reference.Registry,
	engine ports.RateEngine,
	defaultCodes []string,
	log *logger.Logger,
) (*CountryService, error) {
	defaults := make([]model.Country, 0, len(defaultCodes))
	for _, code := range defaultCodes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		country, ok := registry.Country(code)
		if !ok {
			return nil, fmt.Errorf("%w: default %q", ErrUnknownCountry, code)
		}
		defaults = append(defaults, country)
	}

	return &CountryService{
		store:    store,
		registry: registry,
		engine:   engine,
		defaults: defaults,
		log:      log,
	}, nil
}

// Selected falls back to the configured defaults until a selection has
// been stored.
func (s *CountryService) Selected(ctx context.Context) []model.Country {
	if countries, ok := s.store.Load(ctx); ok {
		return countries
	}
	out := make([]model.Country, len(s.defaults))
	copy(out, s.defaults)
	return out
}

func (s *CountryService) Currencies(ctx context.Context) []model.Currency {
	return model.CountryCurrencies(s.Selected(ctx))
}

// Add appends a reference country. Two countries sharing a timezone are
// treated as the same entry.
func (s *CountryService) Add(ctx context.Context, code string) (model.Country, error) {
	country, ok := s.registry.Country(code)
	if !ok {
		return model.Country{}, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := s.Selected(ctx)
	for _, c := range selected {
		if c.Code == country.Code || c.Timezone == country.Timezone {
			return model.Country{}, fmt.Errorf("%w: %s", ErrCountryExists, c.Code)
		}
	}

	selected = append(selected, country)
	if err := s.store.Save(ctx, selected); err != nil {
		return model.Country{}, fmt.Errorf("save selection: %w", err)
	}

	s.log.Info("Country added", "country", country.Code, "currency", country.Currency.Code.String())
	s.reevaluate(ctx, selected)
	return country, nil
}

func (s *CountryService) Remove(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := s.Selected(ctx)
	kept := make([]model.Country, 0, len(selected))
	for _, c := range selected {
		if c.Code != code {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(selected) {
		return fmt.Errorf("%w: %q", ErrCountryNotSelected, code)
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	s.log.Info("Country removed", "country", code)
	s.reevaluate(ctx, kept)
	return nil
}

func (s *CountryService) reevaluate(ctx context.Context, countries []model.Country) {
	currencies := model.CountryCurrencies(countries)
	go s.engine.Evaluate(context.WithoutCancel(ctx), currencies)
}
