package config

import (
	"os"
	"strings"
)

// Environment names recognised by IsProduction and detectEnvironment.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Admin authentication, token signing and login throttling
//   - database.go: Postgres and Redis configuration
//   - http.go: HTTP server and intake throttling configuration
//   - mail.go: SMTP transport and notification recipients
//   - storage.go: Upload storage provider selection
//   - observability.go: Logging level and Prometheus metrics
type AppConfig struct {
	// Environment selects production behaviour (secure cookies, no error details,
	// no insecure signing secret fallback). Falls back to NODE_ENV when unset.
	Environment string `env:"APP_ENV"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Outbound email
	Mail MailConfig

	// Upload storage
	Storage StorageConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectEnvironment()

	c.Auth.Sanitize()
	c.HTTP.Sanitize()
	c.Mail.Sanitize()
	c.Storage.Sanitize()
	c.Observability.Sanitize()

	if c.Redis.CatalogTTL <= 0 {
		c.Redis.CatalogTTL = defaultCatalogTTL
	}
}

// detectEnvironment normalises APP_ENV and falls back to NODE_ENV, which the
// frontend tooling and most hosting platforms already set.
func (c *AppConfig) detectEnvironment() {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(os.Getenv("NODE_ENV")))
	}
	switch env {
	case "prod", EnvProduction:
		env = EnvProduction
	case "dev", "":
		env = EnvDevelopment
	}
	c.Environment = env
}

// IsProduction reports whether the application runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Auth.RateLimitStore == RateLimitStoreRedis || c.Redis.CacheCatalog
}
