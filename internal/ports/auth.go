package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
)

// NewAdmin carries the fields needed to insert an admin account.
// Bootstrap marks the self-registered first admin; the store allows only one.
type NewAdmin struct {
	Email        string
	PasswordHash string
	Name         string
	Role         domainauth.Role
	Bootstrap    bool
}

// AdminRepository persists admin credentials. Emails are stored and matched normalized.
type AdminRepository interface {
	// Count returns the number of admin accounts, active or not.
	Count(ctx context.Context) (int, error)
	// GetActiveByEmail returns the active admin with email, or data.ErrAdminNotFound.
	GetActiveByEmail(ctx context.Context, email string) (*domainauth.AdminAccount, error)
	// ExistsByEmail reports whether any admin (active or not) uses email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create inserts a new admin. Unique violations surface as data.ErrAdminEmailExists
	// or data.ErrAdminAlreadyBootstrapped.
	Create(ctx context.Context, in NewAdmin) (*domainauth.AdminAccount, error)
	// TouchLastLogin records a successful login time.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// List returns every admin ordered by creation time.
	List(ctx context.Context) ([]domainauth.AdminAccount, error)
}

// PasswordHasher produces and checks salted password digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches digest. Malformed digests never match.
	Verify(plain, digest string) bool
}

// TokenIssuer mints and verifies signed session tokens.
type TokenIssuer interface {
	// Issue signs claims. IssuedAt and ExpiresAt are set by the issuer.
	Issue(claims domainauth.Claims) (token string, expiresAt time.Time, err error)
	// Verify checks signature, algorithm, issuer and expiry.
	Verify(token string) (domainauth.Claims, error)
}

// RateLimitStore holds failed login attempt records keyed by source key.
type RateLimitStore interface {
	// Get returns the record for key and whether one exists.
	Get(ctx context.Context, key string) (domainauth.AttemptRecord, bool, error)
	// Increment adds one failure and returns the new count.
	Increment(ctx context.Context, key string) (int, error)
	// Lock sets the lockout deadline for key.
	Lock(ctx context.Context, key string, until time.Time) error
	// Clear removes the record for key.
	Clear(ctx context.Context, key string) error
}
