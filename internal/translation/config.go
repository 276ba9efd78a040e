package translation

import (
	"fmt"
	"time"
)

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "anthropic/claude-opus-4.5"
	// DefaultBaseURL is the OpenRouter API root
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultReferer and DefaultTitle identify the app to OpenRouter
	DefaultReferer = "https://maclinea.com.br"
	DefaultTitle   = "Maclinea - Traducao PT->IT"

	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.2
	// DefaultBreakerTimeout is how long an open breaker rejects batches
	DefaultBreakerTimeout = 60 * time.Second
)

// Config holds everything the translator needs to reach the endpoint
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Referer     string
	Title       string
	MaxTokens   int
	Temperature float32

	// MaxConsecutiveFailures trips the circuit breaker after that many
	// failed batches in a row. Zero disables the breaker.
	MaxConsecutiveFailures uint32
	BreakerTimeout         time.Duration
}

// DefaultConfig returns a configuration with every optional field set
func DefaultConfig() Config {
	return Config{
		Model:          DefaultModel,
		BaseURL:        DefaultBaseURL,
		Referer:        DefaultReferer,
		Title:          DefaultTitle,
		MaxTokens:      DefaultMaxTokens,
		Temperature:    DefaultTemperature,
		BreakerTimeout: DefaultBreakerTimeout,
	}
}

// ConfigError reports a missing or invalid setting found before any I/O
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Message)
}

// Validate checks the required fields
func (c Config) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{
			Field:   "api_key",
			Message: "OPENROUTER_API_KEY is not set. Export it or configure openrouter.api_key in .ledgerlingo.yaml",
		}
	}
	if c.Model == "" {
		return &ConfigError{Field: "model", Message: "model must not be empty"}
	}
	if c.BaseURL == "" {
		return &ConfigError{Field: "base_url", Message: "base URL must not be empty"}
	}
	if c.MaxTokens < 0 {
		return &ConfigError{Field: "max_tokens", Message: fmt.Sprintf("must not be negative, got %d", c.MaxTokens)}
	}
	return nil
}
