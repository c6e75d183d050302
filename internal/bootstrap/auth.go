package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/halayachts/hala-api/config"
	"github.com/halayachts/hala-api/internal/adapters/jwtauth"
	"github.com/halayachts/hala-api/internal/adapters/passwords"
	"github.com/halayachts/hala-api/internal/adapters/ratelimit"
	redisadapter "github.com/halayachts/hala-api/internal/adapters/redis"
	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/halayachts/hala-api/internal/service"
)

// loginRateLimitPrefix namespaces login attempt hashes under the configured Redis key prefix.
const loginRateLimitPrefix = "ratelimit:login:"

// AuthConfig contains configuration for the admin auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	Production  bool
	DB          *sql.DB
	RedisClient redis.UniversalClient
	RedisPrefix string
	Logger      *slog.Logger
}

// BuildAuthService wires the credential store, hasher, token issuer and login
// limiter into an AdminAuthService. It fails when production runs without a
// signing secret or when the Redis store is selected without a client.
func BuildAuthService(cfg AuthConfig) (*service.AdminAuthService, error) {
	if cfg.DB == nil {
		return nil, errors.New("auth service requires a database")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := buildTokenIssuer(cfg.Auth, cfg.Production, logger)
	if err != nil {
		return nil, err
	}

	store, err := buildRateLimitStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("login rate limiter configured",
		"store", cfg.Auth.RateLimitStore,
		"max_attempts", cfg.Auth.MaxLoginAttempts,
		"lockout", cfg.Auth.LockoutDuration,
	)

	limiter := service.NewLoginLimiter(service.LoginLimiterOptions{
		Store: store,
		Policy: service.LoginPolicy{
			MaxAttempts: cfg.Auth.MaxLoginAttempts,
			Lockout:     cfg.Auth.LockoutDuration,
		},
	})

	return service.NewAdminAuthService(service.AdminAuthServiceOptions{
		Admins: data.NewAdminRepo(cfg.DB),
		Deps: service.AdminAuthDeps{
			Hasher:  passwords.NewBcryptHasher(cfg.Auth.BcryptCost),
			Tokens:  tokens,
			Limiter: limiter,
		},
		Logger: logger,
	}), nil
}

func buildTokenIssuer(auth config.AuthConfig, production bool, logger *slog.Logger) (*jwtauth.Manager, error) {
	secret, insecure, err := auth.SigningSecret(production)
	if err != nil {
		return nil, err
	}
	if insecure {
		logger.Warn("using insecure development token signing secret; set ADMIN_JWT_SECRET")
	}

	mgr, err := jwtauth.New(jwtauth.Options{Secret: secret, TTL: auth.TokenTTL})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	return mgr, nil
}

//nolint:ireturn // the store implementation is selected by configuration.
func buildRateLimitStore(cfg AuthConfig) (ports.RateLimitStore, error) {
	switch cfg.Auth.RateLimitStore {
	case config.RateLimitStoreRedis:
		if cfg.RedisClient == nil {
			return nil, errors.New("RATE_LIMIT_STORE=redis requires a redis client")
		}
		return redisadapter.NewRateLimitStoreWithPrefix(
			cfg.RedisClient,
			cfg.RedisPrefix+loginRateLimitPrefix,
			cfg.Auth.RateLimitIdleTTL,
		), nil
	default:
		return ratelimit.NewMemoryStore(ratelimit.MemoryStoreOptions{IdleTTL: cfg.Auth.RateLimitIdleTTL}), nil
	}
}
