package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server           ServerConfig  `envPrefix:"SERVER_"`
	RateAPI          RateAPIConfig `envPrefix:"RATE_API_"`
	Sync             SyncConfig    `envPrefix:"SYNC_"`
	Storage          StorageConfig `envPrefix:"STORAGE_"`
	DefaultCountries []string      `env:"DEFAULT_COUNTRIES" envSeparator:"," envDefault:"US,GB,DE,JP"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Port         int           `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
}

type RateAPIConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type SyncConfig struct {
	TTL                  time.Duration `env:"TTL" envDefault:"24h"`
	RefreshMargin        time.Duration `env:"REFRESH_MARGIN" envDefault:"3h"`
	FetchTimeout         time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	MaxConcurrentFetches int           `env:"MAX_CONCURRENT_FETCHES" envDefault:"8"`
	EvaluateInterval     time.Duration `env:"EVALUATE_INTERVAL" envDefault:"30m"`
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type StorageConfig struct {
	Driver        string `env:"DRIVER" envDefault:"sqlite"`
	DocumentKey   string `env:"DOCUMENT_KEY" envDefault:"settings"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/settings.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}
	if strings.TrimSpace(c.RateAPI.BaseURL) == "" {
		errs = append(errs, errors.New("rate api base url is required"))
	}
	if c.Sync.TTL <= 0 {
		errs = append(errs, errors.New("sync ttl must be positive"))
	}
	if c.Sync.RefreshMargin < 0 || c.Sync.RefreshMargin >= c.Sync.TTL {
		errs = append(errs, fmt.Errorf("sync refresh margin %s must be within ttl %s", c.Sync.RefreshMargin, c.Sync.TTL))
	}
	if c.Sync.FetchTimeout <= 0 {
		errs = append(errs, errors.New("sync fetch timeout must be positive"))
	}
	if c.Sync.MaxConcurrentFetches <= 0 {
		errs = append(errs, errors.New("sync max concurrent fetches must be positive"))
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, errors.New("sqlite path is required"))
		}
	case DriverRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			errs = append(errs, errors.New("redis addr is required"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if strings.TrimSpace(c.Storage.DocumentKey) == "" {
		errs = append(errs, errors.New("storage document key is required"))
	}
	return errors.Join(errs...)
}
