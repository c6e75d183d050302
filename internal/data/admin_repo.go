package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/halayachts/hala-api/internal/data/pgxutil"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/jackc/pgx/v5"
)

const (
	adminColumns = `id, email, password_hash, name, role, is_active, created_at, updated_at, last_login_at`

	adminBootstrapIndex = "admins_single_bootstrap_idx"
)

// AdminRepo provides database operations for admin accounts.
type AdminRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAdminRepo creates a new AdminRepo with real time provider.
func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAdminRepoWithTimeProvider creates a new AdminRepo with a custom time provider.
func NewAdminRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AdminRepo {
	return &AdminRepo{DB: db, timeProvider: tp}
}

var _ ports.AdminRepository = (*AdminRepo)(nil)

// Count returns the number of admin accounts, active or not.
func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

// GetActiveByEmail returns the active admin registered under email.
func (r *AdminRepo) GetActiveByEmail(ctx context.Context, email string) (*domainauth.AdminAccount, error) {
	var out domainauth.AdminAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+adminColumns+` FROM admins WHERE email = $1 AND is_active`,
			normalizeEmail(email))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.AdminAccount])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return &out, nil
}

// ExistsByEmail reports whether any admin uses email.
func (r *AdminRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, normalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	return exists, nil
}

// Create inserts a new admin account.
func (r *AdminRepo) Create(ctx context.Context, in ports.NewAdmin) (*domainauth.AdminAccount, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.PasswordHash == "" {
		return nil, errors.New("admin email and password hash are required")
	}
	role := in.Role
	if role == "" {
		role = domainauth.RoleAdmin
	}
	var name *string
	if n := strings.TrimSpace(in.Name); n != "" {
		name = &n
	}

	now := r.timeProvider.Now().UTC()
	var out domainauth.AdminAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO admins (id, email, password_hash, name, role, is_active, bootstrap, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $7)
			RETURNING `+adminColumns,
			uuid.NewString(), email, in.PasswordHash, name, string(role), in.Bootstrap, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.AdminAccount])
		return err
	})
	if err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// TouchLastLogin records a successful login.
func (r *AdminRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE admins SET last_login_at = $2, updated_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// List returns every admin, oldest first.
func (r *AdminRepo) List(ctx context.Context) ([]domainauth.AdminAccount, error) {
	var out []domainauth.AdminAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at ASC, email ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.AdminAccount])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return out, nil
}

func (r *AdminRepo) mapWriteErr(err error) error {
	if !apperrors.IsUniqueViolation(err) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	if apperrors.UniqueConstraint(err) == adminBootstrapIndex {
		return ErrAdminAlreadyBootstrapped
	}
	return ErrAdminEmailExists
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
