package bootstrap

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halayachts/hala-api/config"
	"github.com/halayachts/hala-api/internal/adapters/ratelimit"
	redisadapter "github.com/halayachts/hala-api/internal/adapters/redis"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAuthServiceRequiresDB(t *testing.T) {
	_, err := BuildAuthService(AuthConfig{Logger: discardLogger()})
	require.Error(t, err)
}

func TestBuildTokenIssuer(t *testing.T) {
	tests := []struct {
		name       string
		auth       config.AuthConfig
		production bool
		wantErr    error
	}{
		{name: "admin secret", auth: config.AuthConfig{AdminJWTSecret: "a-very-long-secret"}, production: true},
		{name: "shared secret", auth: config.AuthConfig{JWTSecret: "shared"}, production: true},
		{name: "dev fallback", auth: config.AuthConfig{}},
		{name: "production without secret", auth: config.AuthConfig{}, production: true, wantErr: config.ErrMissingSigningSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := buildTokenIssuer(tt.auth, tt.production, discardLogger())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			token, _, err := mgr.Issue(domainauth.Claims{Subject: "id-1", Email: "owner@halayachts.com", Role: domainauth.RoleAdmin})
			require.NoError(t, err)
			claims, err := mgr.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "id-1", claims.Subject)
		})
	}
}

func TestBuildRateLimitStore(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		store, err := buildRateLimitStore(AuthConfig{Auth: config.AuthConfig{RateLimitStore: config.RateLimitStoreMemory}})
		require.NoError(t, err)
		assert.IsType(t, &ratelimit.MemoryStore{}, store)
	})

	t.Run("redis without client", func(t *testing.T) {
		_, err := buildRateLimitStore(AuthConfig{Auth: config.AuthConfig{RateLimitStore: config.RateLimitStoreRedis}})
		require.Error(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		client := testutil.SetupTestRedis(t)
		store, err := buildRateLimitStore(AuthConfig{
			Auth: config.AuthConfig{
				RateLimitStore:   config.RateLimitStoreRedis,
				RateLimitIdleTTL: time.Hour,
			},
			RedisClient: client,
			RedisPrefix: "hala-test:",
		})
		require.NoError(t, err)
		assert.IsType(t, &redisadapter.RateLimitStore{}, store)
	})
}
