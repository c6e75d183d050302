// Package jwtauth implements ports.TokenIssuer with HS256-signed JWTs.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/ports"
)

// Issuer is the iss claim placed in and required of every token.
const Issuer = "hala-api"

// DefaultTTL is the session token validity window.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrTokenExpired is returned by Verify for a well-formed token past its exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned by Verify for malformed, forged or foreign tokens.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrEmptySecret is returned by New when no signing secret is provided.
	ErrEmptySecret = errors.New("signing secret is empty")
)

var _ ports.TokenIssuer = (*Manager)(nil)

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Options configures a Manager.
type Options struct {
	Secret string
	TTL    time.Duration
	// Now overrides the clock; used by tests.
	Now func() time.Time
}

// Manager signs and verifies session tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns a Manager. The secret must already be resolved by configuration.
func New(opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, ErrEmptySecret
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: []byte(opts.Secret), ttl: ttl, now: now}, nil
}

// Issue signs c with IssuedAt=now and ExpiresAt=now+TTL.
func (m *Manager) Issue(c domainauth.Claims) (string, time.Time, error) {
	now := m.now().UTC().Truncate(time.Second)
	exp := now.Add(m.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: c.Email,
		Role:  string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses token and returns its claims. Errors wrap ErrTokenExpired or ErrTokenInvalid.
func (m *Manager) Verify(token string) (domainauth.Claims, error) {
	if token == "" {
		return domainauth.Claims{}, ErrTokenInvalid
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if parsed.Subject == "" {
		return domainauth.Claims{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	out := domainauth.Claims{
		Subject: parsed.Subject,
		Email:   parsed.Email,
		Role:    domainauth.Role(parsed.Role),
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	return out, nil
}

// TTL returns the configured validity window.
func (m *Manager) TTL() time.Duration { return m.ttl }
