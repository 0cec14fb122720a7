package app

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
)

// ClientEnvPrefix prefixes every back-office client variable.
const ClientEnvPrefix = "BACKOFFICE"

// Config holds runtime configuration for the back-office client.
type Config struct {
	APIURL          string        `envconfig:"API_URL" default:"http://127.0.0.1:8080/api/v1"`
	APIToken        string        `envconfig:"API_TOKEN"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	APIRetries      int           `envconfig:"API_RETRIES" default:"0"`
	SearchDebounce  time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	DefaultPageSize int           `envconfig:"DEFAULT_PAGE_SIZE" default:"10"`
	Locale          string        `envconfig:"LOCALE" default:"id"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogFile   string `envconfig:"LOG_FILE" default:"backoffice.log"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads the client configuration from BACKOFFICE_* variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ClientEnvPrefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) url", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.APIRetries < 0 {
		return errors.New("api retries must not be negative")
	}
	if c.SearchDebounce < 0 {
		return errors.New("search debounce must not be negative")
	}
	if !slices.Contains(listing.DefaultPageSizes, c.DefaultPageSize) {
		return fmt.Errorf("default page size %d not in %v", c.DefaultPageSize, listing.DefaultPageSizes)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ServerConfig holds runtime configuration for the development API server.
type ServerConfig struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// Both stores are optional; empty falls back to memory and no idempotency.
	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`

	IdempotencyTTL   time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	Latency          time.Duration `envconfig:"DEVAPI_LATENCY" default:"0s"`
	LegacyCategories bool          `envconfig:"DEVAPI_LEGACY_CATEGORIES" default:"false"`
	RateLimit        int           `envconfig:"DEVAPI_RATE_LIMIT" default:"600"`
	Seed             bool          `envconfig:"DEVAPI_SEED" default:"true"`
}

// LoadServerConfig reads configuration from environment variables.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.AppAddr) == "" {
		return nil, errors.New("listen address must be provided")
	}
	if cfg.Latency < 0 {
		return nil, errors.New("latency must not be negative")
	}
	if cfg.RateLimit < 0 {
		return nil, errors.New("rate limit must not be negative")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the server runs in production.
func (c *ServerConfig) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
