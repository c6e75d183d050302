package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/halayachts/hala-api/internal/data"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/observability/metrics"
	"github.com/halayachts/hala-api/internal/ports"
)

// User-facing messages. Unknown email and wrong password share one message.
const (
	msgRateLimited         = "Too many login attempts. Please try again later."
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid email or password"
	msgRegistrationClosed  = "Registration is disabled because an admin account already exists."
	msgDuplicateEmail      = "An admin with this email already exists"
	msgWeakPassword        = "Password must be at least 8 characters long"
	msgPasswordTooLong     = "Password must be at most 72 bytes"
	msgCreateAdminFailed   = "Failed to create admin account"
)

// timingPassword is hashed once and compared against on unknown emails so a
// miss costs the same hash work as a wrong password.
const timingPassword = "hala-unknown-admin-timing-equalizer"

// UnknownSourceKey is used when the client address cannot be determined.
const UnknownSourceKey = "unknown"

// AdminAuthDeps groups the credential and throttling collaborators.
type AdminAuthDeps struct {
	Hasher       ports.PasswordHasher // Required
	Tokens       ports.TokenIssuer    // Required
	Limiter      *LoginLimiter        // Required
	TimeProvider data.TimeProvider
}

// AdminAuthServiceOptions groups dependencies for AdminAuthService.
type AdminAuthServiceOptions struct {
	Admins ports.AdminRepository // Required
	Deps   AdminAuthDeps
	Logger *slog.Logger
}

// AdminAuthService implements admin login, session introspection, logout and
// the one-shot registration of the first admin.
type AdminAuthService struct {
	admins  ports.AdminRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	limiter *LoginLimiter
	clock   data.TimeProvider
	logger  *slog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(opts AdminAuthServiceOptions) *AdminAuthService {
	if opts.Admins == nil {
		panic("AdminRepository is required")
	}
	if opts.Deps.Hasher == nil {
		panic("PasswordHasher is required")
	}
	if opts.Deps.Tokens == nil {
		panic("TokenIssuer is required")
	}
	if opts.Deps.Limiter == nil {
		panic("LoginLimiter is required")
	}
	clock := opts.Deps.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminAuthService{
		admins:  opts.Admins,
		hasher:  opts.Deps.Hasher,
		tokens:  opts.Deps.Tokens,
		limiter: opts.Deps.Limiter,
		clock:   clock,
		logger:  logger.With("component", "admin_auth"),
	}
}

// LoginInput is a login attempt from one source key.
type LoginInput struct {
	SourceKey string
	Email     string
	Password  string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Profile   domainauth.PublicProfile
}

// Login checks the limiter, verifies credentials against active accounts and
// mints a session token. The per-key lock is held for the whole attempt so
// concurrent failures from one source are counted one at a time.
func (s *AdminAuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	key := strings.TrimSpace(in.SourceKey)
	if key == "" {
		key = UnknownSourceKey
	}

	release := s.limiter.Acquire(key)
	defer release()

	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		metrics.RecordLoginAttempt(metrics.LoginError)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "check login rate limit")
	}
	if !allowed {
		metrics.RecordLoginAttempt(metrics.LoginRateLimited)
		s.logger.WarnContext(ctx, "admin login rejected", "reason", "rate_limited", "source", key)
		return nil, apperrors.RateLimited(msgRateLimited)
	}

	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		metrics.RecordLoginAttempt(metrics.LoginBadRequest)
		return nil, apperrors.BadRequest(msgCredentialsRequired)
	}

	email := domainauth.NormalizeEmail(in.Email)
	admin, err := s.admins.GetActiveByEmail(ctx, email)
	switch {
	case errors.Is(err, data.ErrAdminNotFound):
		s.hasher.Verify(in.Password, s.unknownAdminDigest(ctx))
		return nil, s.rejectLogin(ctx, key, "unknown_email")
	case err != nil:
		metrics.RecordLoginAttempt(metrics.LoginError)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "look up admin")
	}

	if !s.hasher.Verify(in.Password, admin.PasswordHash) {
		return nil, s.rejectLogin(ctx, key, "invalid_password")
	}

	if err := s.limiter.RecordSuccess(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "clear login attempts failed", "source", key, "error", err)
	}

	token, expiresAt, err := s.tokens.Issue(domainauth.Claims{
		Subject: admin.ID,
		Email:   admin.Email,
		Role:    admin.Role,
	})
	if err != nil {
		metrics.RecordLoginAttempt(metrics.LoginError)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "issue session token")
	}

	if err := s.admins.TouchLastLogin(ctx, admin.ID, s.clock.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "record last login failed", "admin_id", admin.ID, "error", err)
	}

	metrics.RecordLoginAttempt(metrics.LoginSuccess)
	s.logger.InfoContext(ctx, "admin login succeeded", "admin_id", admin.ID, "source", key)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   admin.Profile(),
	}, nil
}

func (s *AdminAuthService) unknownAdminDigest(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.logger.WarnContext(ctx, "prepare timing digest failed", "error", err)
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

// rejectLogin counts a failure against key and returns the shared credentials error.
func (s *AdminAuthService) rejectLogin(ctx context.Context, key, reason string) error {
	metrics.RecordLoginAttempt(metrics.LoginInvalidCredentials)
	s.logger.WarnContext(ctx, "admin login failed", "reason", reason, "source", key)
	if err := s.limiter.RecordFailure(ctx, key); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "record failed login")
	}
	return apperrors.InvalidCredentials(msgInvalidCredentials)
}

// Introspection is the result of checking a session token.
type Introspection struct {
	Authenticated bool
	Identity      domainauth.Identity
}

// Introspect verifies token. It never fails: a missing, malformed, forged or
// expired token reports Authenticated false.
func (s *AdminAuthService) Introspect(ctx context.Context, token string) Introspection {
	if token == "" {
		return Introspection{}
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.DebugContext(ctx, "session token rejected", "error", err)
		return Introspection{}
	}
	return Introspection{Authenticated: true, Identity: domainauth.IdentityFromClaims(claims)}
}

// Logout acknowledges a logout. Sessions are stateless, so the transport is
// responsible for expiring the cookie.
func (s *AdminAuthService) Logout(ctx context.Context) {
	s.logger.DebugContext(ctx, "admin logout")
}

// RegisterInput is the payload for creating the first admin.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// RegisterInitialAdmin creates the first admin account. It is refused once any
// admin exists.
func (s *AdminAuthService) RegisterInitialAdmin(ctx context.Context, in RegisterInput) (*domainauth.AdminAccount, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "count admins")
	}
	if count > 0 {
		return nil, apperrors.AlreadyInitialized(msgRegistrationClosed)
	}

	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperrors.BadRequest(msgCredentialsRequired)
	}

	email := domainauth.NormalizeEmail(in.Email)
	exists, err := s.admins.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "check admin email")
	}
	if exists {
		return nil, apperrors.DuplicateEmail(msgDuplicateEmail)
	}

	if pwErr := checkPassword(in.Password); pwErr != nil {
		return nil, pwErr
	}

	account, err := s.createAdmin(ctx, createAdminInput{
		email:     email,
		password:  in.Password,
		name:      in.Name,
		bootstrap: true,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "initial admin registered", "admin_id", account.ID)
	return account, nil
}

// SeedAdminInput describes an operator-provisioned admin.
type SeedAdminInput struct {
	Email    string
	Password string
	Name     string
}

// ErrAdminExists is returned by SeedAdmin when the email is already taken.
var ErrAdminExists = errors.New("admin already exists")

// SeedAdmin provisions an admin from the operator CLI. Unlike registration it
// does not require an empty table, but it refuses an existing email.
func (s *AdminAuthService) SeedAdmin(ctx context.Context, in SeedAdminInput) (*domainauth.AdminAccount, error) {
	email := domainauth.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.BadRequest(msgCredentialsRequired)
	}
	exists, err := s.admins.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check admin email: %w", err)
	}
	if exists {
		return nil, ErrAdminExists
	}
	if pwErr := checkPassword(in.Password); pwErr != nil {
		return nil, pwErr
	}
	return s.createAdmin(ctx, createAdminInput{email: email, password: in.Password, name: in.Name})
}

// ListAdmins returns every admin account.
func (s *AdminAuthService) ListAdmins(ctx context.Context) ([]domainauth.AdminAccount, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// checkPassword enforces the length bounds the hasher can honour.
func checkPassword(password string) error {
	switch {
	case len(password) < domainauth.MinPasswordLength:
		return apperrors.WeakPassword(msgWeakPassword)
	case len(password) > domainauth.MaxPasswordBytes:
		return apperrors.WeakPassword(msgPasswordTooLong)
	}
	return nil
}

type createAdminInput struct {
	email     string
	password  string
	name      string
	bootstrap bool
}

func (s *AdminAuthService) createAdmin(ctx context.Context, in createAdminInput) (*domainauth.AdminAccount, error) {
	hash, err := s.hasher.Hash(in.password)
	if err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("hash password: %w", err), apperrors.ErrCodeInternal, msgCreateAdminFailed)
	}

	name := strings.TrimSpace(in.name)
	if name == "" {
		name = domainauth.DefaultAdminName
	}

	account, err := s.admins.Create(ctx, ports.NewAdmin{
		Email:        in.email,
		PasswordHash: hash,
		Name:         name,
		Role:         domainauth.RoleAdmin,
		Bootstrap:    in.bootstrap,
	})
	switch {
	case errors.Is(err, data.ErrAdminAlreadyBootstrapped):
		return nil, apperrors.AlreadyInitialized(msgRegistrationClosed)
	case errors.Is(err, data.ErrAdminEmailExists):
		return nil, apperrors.DuplicateEmail(msgDuplicateEmail)
	case err != nil:
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, msgCreateAdminFailed)
	}
	return account, nil
}
