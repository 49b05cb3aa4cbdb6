package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"world-rates-service/internal/adapter/cache"
	httpRouter "world-rates-service/internal/adapter/http"
	"world-rates-service/internal/adapter/repository"
	"world-rates-service/internal/adapter/storage"
	"world-rates-service/internal/adapter/storage/redis"
	"world-rates-service/internal/adapter/storage/sqlite"
	"world-rates-service/internal/config"
	"world-rates-service/internal/domain/ports"
	"world-rates-service/internal/metrics"
	"world-rates-service/internal/reference"
	"world-rates-service/internal/service"
	"world-rates-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"))
	log.Info("Starting world rates service")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	log = logger.NewLogger(cfg.LogLevel)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	backend, closeBackend, err := openBackend(cfg.Storage, log)
	if err != nil {
		log.Error("Failed to open settings store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	doc := storage.NewDocument(backend, cfg.Storage.DocumentKey, log)
	rateStore := storage.NewRateStore(doc, log, appMetrics)
	countryStore := storage.NewCountryStore(doc, log, appMetrics)

	rateAPI := repository.NewCurrencyAPI(cfg.RateAPI.BaseURL, cfg.RateAPI.Timeout, log, appMetrics)

	syncService := service.NewSyncService(
		rateAPI,
		rateStore,
		service.NewFreshnessPolicy(cfg.Sync.TTL, cfg.Sync.RefreshMargin),
		ports.SystemClock,
		service.SyncOptions{
			FetchTimeout:         cfg.Sync.FetchTimeout,
			MaxConcurrentFetches: cfg.Sync.MaxConcurrentFetches,
		},
		log,
		appMetrics,
	)

	registry := reference.Default()
	countryService, err := service.NewCountryService(countryStore, registry, syncService, cfg.DefaultCountries, log)
	if err != nil {
		log.Error("Invalid default countries", "error", err)
		closeBackend()
		os.Exit(1)
	}
	conversionService := service.NewConversionService(syncService, registry)

	handler := httpRouter.NewHandler(syncService, countryService, conversionService, registry, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelEvaluate := context.WithCancel(context.Background())
	evaluateDone := make(chan struct{})
	go func() {
		defer close(evaluateDone)
		evaluateRates(ctx, syncService, countryService, cfg.Sync.EvaluateInterval, log)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("HTTP server error", "error", err)
	}
	log.Info("Shutting down server...")

	cancelEvaluate()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	select {
	case <-evaluateDone:
	case <-shutdownCtx.Done():
		log.Warn("Rate evaluation did not stop before shutdown deadline")
	}

	log.Info("Server exited")
}

// openBackend returns the settings document backend selected by driver and
// a func releasing it.
func openBackend(cfg config.StorageConfig, log *logger.Logger) (ports.DocumentBackend, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		b, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using sqlite settings store", "path", cfg.SQLitePath)
		return b, func() {
			if err := b.Close(); err != nil {
				log.Error("Failed to close sqlite store", "error", err)
			}
		}, nil
	case config.DriverRedis:
		b := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "world-rates:")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.Ping(ctx); err != nil {
			b.Close()
			return nil, nil, err
		}
		log.Info("Using redis settings store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return b, func() {
			if err := b.Close(); err != nil {
				log.Error("Failed to close redis store", "error", err)
			}
		}, nil
	default:
		log.Warn("Using in-memory settings store, selections are lost on restart")
		return cache.NewMemoryCache(log), func() {}, nil
	}
}

// evaluateRates checks the selected currencies at startup and then on every
// tick. Evaluate only fetches what is missing or close to expiry.
func evaluateRates(ctx context.Context, rates ports.RateEngine, countries ports.CountrySelector, interval time.Duration, log *logger.Logger) {
	rates.Evaluate(ctx, countries.Currencies(ctx))

	if interval <= 0 {
		log.Info("Periodic rate evaluation disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rates.Evaluate(ctx, countries.Currencies(ctx))
		case <-ctx.Done():
			log.Info("Stopping rate evaluation goroutine")
			return
		}
	}
}
