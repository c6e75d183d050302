package auth

// Package auth contains domain-level types for admin authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and token claims.
type Role string

const (
	RoleAdmin Role = "admin"
)

// DefaultAdminName is used when an admin is created without a display name.
const DefaultAdminName = "Hala Yachts Admin"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// MaxPasswordBytes is bcrypt's input limit; longer passwords cannot be hashed.
const MaxPasswordBytes = 72

// AdminAccount is a persisted administrator credential.
// PasswordHash must never be logged or serialized.
type AdminAccount struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         *string    `db:"name"`
	Role         Role       `db:"role"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// DisplayName returns the account name or the default admin name.
func (a AdminAccount) DisplayName() string {
	if a.Name != nil && strings.TrimSpace(*a.Name) != "" {
		return *a.Name
	}
	return DefaultAdminName
}

// Profile returns the public projection of the account.
func (a AdminAccount) Profile() PublicProfile {
	return PublicProfile{Email: a.Email, Name: a.DisplayName(), Role: a.Role}
}

// PublicProfile is the subset of an account returned to clients.
type PublicProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Claims is the content carried by a session token.
type Claims struct {
	Subject   string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the authenticated principal recovered from a valid session token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IdentityFromClaims maps verified token claims onto an Identity.
func IdentityFromClaims(c Claims) Identity {
	return Identity{ID: c.Subject, Email: c.Email, Role: c.Role}
}

// AttemptRecord tracks failed login attempts for one source key.
// A zero LockoutUntil means no lockout is in force.
type AttemptRecord struct {
	Count        int
	LockoutUntil time.Time
}

// Locked reports whether the record blocks logins at now.
func (r AttemptRecord) Locked(now time.Time) bool {
	return !r.LockoutUntil.IsZero() && now.Before(r.LockoutUntil)
}

// LockoutElapsed reports whether a lockout was set and has since passed.
func (r AttemptRecord) LockoutElapsed(now time.Time) bool {
	return !r.LockoutUntil.IsZero() && !now.Before(r.LockoutUntil)
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
