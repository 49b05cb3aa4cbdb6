package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/domain/ports"
	"world-rates-service/internal/metrics"
	"world-rates-service/internal/reference"
	"world-rates-service/internal/service"
	"world-rates-service/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Converter is the validation layer in front of the rate engine.
type Converter interface {
	ConvertCurrency(request model.ConversionRequest) (*model.ConversionResult, error)
	ValidateCurrencies(codes ...model.Currency) error
}

type Handler struct {
	engine    ports.RateEngine
	countries ports.CountrySelector
	converter Converter
	registry  *reference.Registry
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewHandler(
	engine ports.RateEngine,
	countries ports.CountrySelector,
	converter Converter,
	registry *reference.Registry,
	log *logger.Logger,
	metrics *metrics.Metrics,
) *Handler {
	return &Handler{
		engine:    engine,
		countries: countries,
		converter: converter,
		registry:  registry,
		log:       log,
		metrics:   metrics,
	}
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.engine.Status())
}

// RefreshHandler starts a forced refresh and returns before it completes.
// Without a currencies parameter the selected countries' currencies are used.
// already_syncing tells the client the request was ignored.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RefreshRequestsTotal.Inc()

	codes := model.ParseCurrencies(r.URL.Query().Get("currencies"))
	if len(codes) == 0 {
		codes = h.countries.Currencies(r.Context())
	} else if err := h.converter.ValidateCurrencies(codes...); err != nil {
		h.handleServiceError(w, err)
		return
	}

	if len(codes) == 0 {
		h.sendErrorResponse(w, http.StatusBadRequest, "no currencies selected")
		return
	}

	// an in-flight batch makes the engine drop this refresh
	alreadySyncing := h.engine.Status().Syncing
	go h.engine.Refresh(context.WithoutCancel(r.Context()), codes)

	h.sendResponse(w, http.StatusAccepted, map[string]interface{}{
		"currencies":      codes,
		"already_syncing": alreadySyncing,
	})
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	from := model.Currency(r.URL.Query().Get("from"))
	to := model.Currency(r.URL.Query().Get("to"))
	amountStr := r.URL.Query().Get("amount")

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	amount := 1.0
	if amountStr != "" {
		var err error
		amount, err = strconv.ParseFloat(amountStr, 64)
		if err != nil {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
			return
		}
	}

	result, err := h.converter.ConvertCurrency(model.ConversionRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       amount,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, result)
}

func (h *Handler) RatesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.engine.Snapshot())
}

func (h *Handler) ListCountriesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.countries.Selected(r.Context()))
}

func (h *Handler) AddCountryHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: code")
		return
	}

	country, err := h.countries.Add(r.Context(), code)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusCreated, country)
}

func (h *Handler) RemoveCountryHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: code")
		return
	}

	if err := h.countries.Remove(r.Context(), code); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, h.countries.Selected(r.Context()))
}

func (h *Handler) ReferenceCountriesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.registry.Countries())
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	h.sendResponse(w, http.StatusOK, data)
}

func (h *Handler) sendResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid currency"
	case errors.Is(err, service.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid amount"
	case errors.Is(err, service.ErrUnknownCountry):
		statusCode = http.StatusBadRequest
		errorMessage = "unknown country"
	case errors.Is(err, service.ErrCountryExists):
		statusCode = http.StatusConflict
		errorMessage = "country already selected"
	case errors.Is(err, service.ErrCountryNotSelected):
		statusCode = http.StatusNotFound
		errorMessage = "country not selected"
	}

	if statusCode >= http.StatusInternalServerError {
		h.log.Error("Service error", "error", err, "status_code", statusCode)
	} else {
		h.log.Warn("Request rejected", "error", err, "status_code", statusCode)
	}
	h.sendErrorResponse(w, statusCode, errorMessage)
}
