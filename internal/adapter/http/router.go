package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	handler  *Handler
	log      *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewRouter serves /metrics from gatherer. A nil gatherer means the
// default registry.
func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics, gatherer prometheus.Gatherer) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		handler:  handler,
		log:      log,
		metrics:  metrics,
		gatherer: gatherer,
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		duration := time.Since(start)
		r.metrics.HTTPRequestDuration.WithLabelValues(req.URL.Path, req.Method).Observe(duration.Seconds())
		r.metrics.HTTPRequestsTotal.WithLabelValues(req.URL.Path, req.Method, strconv.Itoa(crw.statusCode/100)+"xx").Inc()

		r.log.Info("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"query", req.URL.RawQuery,
			"status", crw.statusCode,
			"duration", duration,
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (crw *customResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := crw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	crw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *Router) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", r.handler.StatusHandler)
	mux.HandleFunc("POST /api/v1/refresh", r.handler.RefreshHandler)
	mux.HandleFunc("GET /api/v1/convert", r.handler.ConvertCurrencyHandler)
	mux.HandleFunc("GET /api/v1/rates", r.handler.RatesHandler)
	mux.HandleFunc("GET /api/v1/countries", r.handler.ListCountriesHandler)
	mux.HandleFunc("POST /api/v1/countries", r.handler.AddCountryHandler)
	mux.HandleFunc("DELETE /api/v1/countries", r.handler.RemoveCountryHandler)
	mux.HandleFunc("GET /api/v1/reference/countries", r.handler.ReferenceCountriesHandler)
	mux.HandleFunc("GET /api/v1/events", r.handler.EventsHandler)

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	apiWithMiddleware := r.loggingMiddleware(mux)

	rootMux := http.NewServeMux()

	rootMux.Handle("/", apiWithMiddleware)
	rootMux.Handle("/api/", apiWithMiddleware)

	rootMux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	return rootMux
}
