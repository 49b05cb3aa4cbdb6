package service

import (
	"errors"
	"math"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/domain/ports"
	"world-rates-service/internal/reference"
	"world-rates-service/pkg/utils"
)

var (
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// ConversionService validates conversion requests against the reference
// data before asking the engine for a rate.
type ConversionService struct {
	engine   ports.RateEngine
	registry *reference.Registry
}

func NewConversionService(engine ports.RateEngine, registry *reference.Registry) *ConversionService {
	return &ConversionService{engine: engine, registry: registry}
}

func (s *ConversionService) ConvertCurrency(request model.ConversionRequest) (*model.ConversionResult, error) {
	from := model.NormalizeCurrency(string(request.FromCurrency))
	to := model.NormalizeCurrency(string(request.ToCurrency))

	if err := s.ValidateCurrencies(from, to); err != nil {
		return nil, err
	}

	if request.Amount <= 0 || math.IsInf(request.Amount, 0) || math.IsNaN(request.Amount) {
		return nil, ErrInvalidAmount
	}

	rate := s.engine.Convert(from, to)
	converted := request.Amount * rate

	return &model.ConversionResult{
		FromCurrency: from,
		ToCurrency:   to,
		FromAmount:   request.Amount,
		ToAmount:     converted,
		Rate:         rate,
		Available:    rate != 0,
		Display:      utils.FormatRate(converted),
	}, nil
}

// ValidateCurrencies rejects codes missing from the reference data.
func (s *ConversionService) ValidateCurrencies(codes ...model.Currency) error {
	for _, code := range codes {
		if !code.IsValid() || !s.registry.IsKnownCurrency(code) {
			return ErrInvalidCurrency
		}
	}
	return nil
}
