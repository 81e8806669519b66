// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the service needs at startup.
type Config struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"ai-service"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
	Environment    string `env:"ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"8080"`

	// Cache
	CacheBackend  string `env:"CACHE_BACKEND" envDefault:"memory"` // "memory" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Completion endpoint
	LLMBaseURL      string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com"`
	LLMAPIKey       string        `env:"LLM_API_KEY"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gpt-4"`
	UpstreamTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Retry policy
	MaxAttempts int           `env:"LLM_MAX_ATTEMPTS" envDefault:"3"`
	BaseDelay   time.Duration `env:"LLM_BASE_DELAY" envDefault:"1s"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields the service cannot run without.
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return errors.New("LLM_API_KEY is required")
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("LLM_MAX_ATTEMPTS must be >= 1, got %d", c.MaxAttempts)
	}
	return nil
}
