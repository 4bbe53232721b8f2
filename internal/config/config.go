package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/validator"
)

// SessionPlaceholder is substituted with the checkout session id in
// PaymentRedirectURL.
const SessionPlaceholder = "{session_id}"

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development" validate:"oneof=development staging production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`

	// Storefront backend
	BaseURL string `env:"STOREFRONT_BASE_URL" envDefault:"http://localhost:5000" validate:"required,http_url"`

	// Namespace prefixes every storage key, one per storefront profile.
	Namespace string `env:"STOREFRONT_PROFILE" envDefault:"default" validate:"required"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required,hostname_port"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`

	// Cart TTL in hours. Zero keeps the cart until it is overwritten.
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"0" validate:"gte=0"`

	// Chat
	ChatLanguage string `env:"CHAT_LANGUAGE" envDefault:"uk" validate:"required"`

	// HTTP client
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	HTTPMaxRetries int           `env:"HTTP_MAX_RETRIES" envDefault:"1" validate:"gte=0,lte=5"`

	// Circuit breaker
	CBTimeout      time.Duration `env:"CB_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5" validate:"gte=1"`
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5" validate:"gt=0,lte=1"`

	// PaymentRedirectURL is the payment page template, containing
	// {session_id}. Empty means no payment provider is configured.
	PaymentRedirectURL string `env:"PAYMENT_REDIRECT_URL" envDefault:""`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// PushgatewayURL receives the process metrics on exit. Empty disables it.
	PushgatewayURL string `env:"PUSHGATEWAY_URL" envDefault:"" validate:"omitempty,http_url"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithPrefix("")
}

// LoadWithPrefix reads configuration from environment variables carrying
// prefix, e.g. "SHOP2_" for a second storefront profile.
func LoadWithPrefix(prefix string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithPrefix(cfg, prefix); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid storefront config: %w", err)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.PaymentRedirectURL != "" && !strings.Contains(c.PaymentRedirectURL, SessionPlaceholder) {
		return fmt.Errorf("PAYMENT_REDIRECT_URL must contain %s", SessionPlaceholder)
	}
	return nil
}

// CartTTLDuration returns the cart TTL as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}
