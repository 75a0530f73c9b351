// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and handed to components through
their constructors.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Notification Backends

const (
	NotifyRedis = "redis"
	NotifyKafka = "kafka"
	NotifyLog   = "log"
)

// # Configuration Schema

// Config holds all runtime configuration for the catalogue API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string        `env:"REDIS_URL,required"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// Tokens are issued by the AAI proxy; only the public key is needed here.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`
	JWTIssuer     string `env:"JWT_ISSUER"`

	// Catalogue identity
	HomeCatalogue string `env:"HOME_CATALOGUE"  envDefault:"eosc"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"https://search.marketplace.eosc-portal.eu"`
	PIDPrefix     string `env:"PID_PREFIX"      envDefault:"21.T15999"`

	// Mirror notifications
	NotifyBackend string   `env:"NOTIFY_BACKEND" envDefault:"redis"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS"  envSeparator:","`

	// AuditScanLimit caps how many records are pulled from the index before
	// audit-state filtering happens in memory.
	AuditScanLimit int `env:"AUDIT_SCAN_LIMIT" envDefault:"1000"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field constraints env tags cannot express.
func (c *Config) validate() error {
	switch c.NotifyBackend {
	case NotifyRedis, NotifyLog:
	case NotifyKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("config: KAFKA_BROKERS is required when NOTIFY_BACKEND=%s", NotifyKafka)
		}
	default:
		return fmt.Errorf("config: unknown NOTIFY_BACKEND %q", c.NotifyBackend)
	}

	if strings.TrimSpace(c.HomeCatalogue) == "" || strings.Contains(c.HomeCatalogue, ".") {
		return fmt.Errorf("config: HOME_CATALOGUE must be a non-empty id without dots")
	}

	if c.AuditScanLimit <= 0 {
		return fmt.Errorf("config: AUDIT_SCAN_LIMIT must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
