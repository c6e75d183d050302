package config

import (
	"errors"
	"strings"
	"time"
)

// DevSigningSecret is the marked fallback used to sign admin tokens outside
// production when no secret is configured. It must never sign production tokens.
const DevSigningSecret = "insecure-dev-secret-change-me"

// ErrMissingSigningSecret is returned when production runs without a token signing secret.
var ErrMissingSigningSecret = errors.New("ADMIN_JWT_SECRET or JWT_SECRET must be set in production")

// RateLimitStoreKind selects the backing store for login attempt counters.
type RateLimitStoreKind string

const (
	// RateLimitStoreMemory keeps counters in process memory (per instance).
	RateLimitStoreMemory RateLimitStoreKind = "memory"
	// RateLimitStoreRedis shares counters across instances through Redis.
	RateLimitStoreRedis RateLimitStoreKind = "redis"
)

// AuthConfig groups admin authentication configuration.
type AuthConfig struct {
	// AdminJWTSecret is the preferred, admin-scoped token signing secret.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`
	// JWTSecret is the generic shared signing secret used when AdminJWTSecret is unset.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the session token validity window.
	TokenTTL time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"168h"`

	// BcryptCost is the bcrypt work factor for admin password hashes.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// Login throttling.
	MaxLoginAttempts int                `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LockoutDuration  time.Duration      `env:"LOGIN_LOCKOUT"        envDefault:"15m"`
	RateLimitStore   RateLimitStoreKind `env:"RATE_LIMIT_STORE"     envDefault:"memory"`
	RateLimitIdleTTL time.Duration      `env:"RATE_LIMIT_REDIS_TTL" envDefault:"24h"`

	// Seed admin used by `hala-admin seed-admin`.
	Seed SeedAdminConfig
}

// SeedAdminConfig holds the initial administrator identity for the seed command.
type SeedAdminConfig struct {
	InitialEmail string `env:"INITIAL_ADMIN_EMAIL"`
	Email        string `env:"ADMIN_EMAIL"`
	Password     string `env:"ADMIN_PASSWORD"`
	Name         string `env:"ADMIN_NAME"`
}

// ResolvedEmail returns INITIAL_ADMIN_EMAIL, then ADMIN_EMAIL, then an empty string.
func (s SeedAdminConfig) ResolvedEmail() string {
	if v := strings.TrimSpace(s.InitialEmail); v != "" {
		return v
	}
	return strings.TrimSpace(s.Email)
}

// Sanitize clamps auth values to usable ranges.
func (a *AuthConfig) Sanitize() {
	a.AdminJWTSecret = strings.TrimSpace(a.AdminJWTSecret)
	a.JWTSecret = strings.TrimSpace(a.JWTSecret)

	if a.TokenTTL <= 0 {
		a.TokenTTL = 7 * 24 * time.Hour
	}
	if a.BcryptCost < 10 || a.BcryptCost > 31 {
		a.BcryptCost = 12
	}
	if a.MaxLoginAttempts < 1 {
		a.MaxLoginAttempts = 5
	}
	if a.LockoutDuration <= 0 {
		a.LockoutDuration = 15 * time.Minute
	}
	if a.RateLimitIdleTTL < a.LockoutDuration {
		a.RateLimitIdleTTL = a.LockoutDuration
	}

	switch RateLimitStoreKind(strings.ToLower(string(a.RateLimitStore))) {
	case RateLimitStoreRedis:
		a.RateLimitStore = RateLimitStoreRedis
	default:
		a.RateLimitStore = RateLimitStoreMemory
	}
}

// SigningSecret resolves the token signing secret: ADMIN_JWT_SECRET, then JWT_SECRET,
// then (outside production only) DevSigningSecret. The second return value reports
// whether the insecure fallback was selected.
func (a *AuthConfig) SigningSecret(production bool) (string, bool, error) {
	if a.AdminJWTSecret != "" {
		return a.AdminJWTSecret, false, nil
	}
	if a.JWTSecret != "" {
		return a.JWTSecret, false, nil
	}
	if production {
		return "", false, ErrMissingSigningSecret
	}
	return DevSigningSecret, true, nil
}
