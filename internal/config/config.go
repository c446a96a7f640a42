package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Document store
	ProjectID        string `env:"PROJECT_ID" envDefault:"community-events"`
	DocstoreDriver   string `env:"DOCSTORE_DRIVER" envDefault:"memory"`
	DatabaseURL      string `env:"DATABASE_URL"`
	RedisURL         string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	EventsCollection string `env:"EVENTS_COLLECTION" envDefault:"events"`

	// Authentication service
	AuthServiceURL string        `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:8081"`
	AuthTimeout    time.Duration `env:"AUTH_TIMEOUT" envDefault:"5s"`
	APIKey         string        `env:"API_KEY"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	// RabbitMQ
	RabbitURL      string `env:"RABBIT_URL"`
	RabbitExchange string `env:"RABBIT_EXCHANGE" envDefault:"community.events"`

	// Rate Limiting
	RLEnabled bool          `env:"RL_ENABLED" envDefault:"true"`
	RLLimit   int           `env:"RL_IP_LIMIT" envDefault:"100"`
	RLWindow  time.Duration `env:"RL_IP_WINDOW" envDefault:"1m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"20s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DocstoreDriver = strings.ToLower(strings.TrimSpace(cfg.DocstoreDriver))
	cfg.ProjectID = strings.TrimSpace(cfg.ProjectID)
	cfg.EventsCollection = strings.TrimSpace(cfg.EventsCollection)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DocstoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing DATABASE_URL (required when DOCSTORE_DRIVER=postgres)")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("missing REDIS_URL (required when DOCSTORE_DRIVER=redis)")
		}
	default:
		return fmt.Errorf("invalid DOCSTORE_DRIVER %q (memory|postgres|redis)", c.DocstoreDriver)
	}

	if c.ProjectID == "" {
		return fmt.Errorf("missing PROJECT_ID")
	}
	if c.EventsCollection == "" {
		return fmt.Errorf("missing EVENTS_COLLECTION")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing JWT_SECRET")
	}
	if c.AuthServiceURL == "" {
		return fmt.Errorf("missing AUTH_SERVICE_URL")
	}

	// Rabbit: optional in dev, required elsewhere
	if c.AppEnv != "dev" && c.RabbitURL == "" {
		return fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
	}
	return nil
}
