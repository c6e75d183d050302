package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/halayachts/hala-api/config"
	"github.com/halayachts/hala-api/internal/bootstrap"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/service"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second

	defaultSeedEmail    = "admin@halayachts.com"
	defaultSeedPassword = "ChangeMeNow!123"
)

type migrateOptions struct {
	Timeout time.Duration
}

type seedOptions struct {
	Email    string
	Password string
	Name     string
	Timeout  time.Duration
}

// adminAccounts is the slice of AdminAuthService the CLI uses.
type adminAccounts interface {
	SeedAdmin(ctx context.Context, in service.SeedAdminInput) (*domainauth.AdminAccount, error)
	ListAdmins(ctx context.Context) ([]domainauth.AdminAccount, error)
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runSeedAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseSeedFlags(args, cmdCtx.Config.Auth.Seed)
	if err != nil {
		return err
	}

	return withAdminAccounts(cmdCtx, opts.Timeout, func(ctx context.Context, accounts adminAccounts) error {
		return seedAdmin(ctx, cmdCtx, accounts, opts)
	})
}

// parseSeedFlags resolves the seed identity: flags, then environment, then defaults.
func parseSeedFlags(args []string, env config.SeedAdminConfig) (seedOptions, error) {
	fs := flag.NewFlagSet("seed-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := seedOptions{}
	fs.StringVar(&opts.Email, "email", "", "Admin email (default INITIAL_ADMIN_EMAIL, ADMIN_EMAIL or "+defaultSeedEmail+")")
	fs.StringVar(&opts.Password, "password", "", "Admin password (default ADMIN_PASSWORD)")
	fs.StringVar(&opts.Name, "name", "", "Admin display name (default ADMIN_NAME or "+domainauth.DefaultAdminName+")")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}
	if opts.Timeout <= 0 {
		return seedOptions{}, errors.New("--timeout must be greater than zero")
	}

	opts.Email = firstNonEmpty(opts.Email, env.ResolvedEmail(), defaultSeedEmail)
	if opts.Password == "" {
		opts.Password = env.Password
	}
	opts.Name = firstNonEmpty(opts.Name, env.Name, domainauth.DefaultAdminName)
	return opts, nil
}

func seedAdmin(ctx context.Context, cmdCtx *commandContext, accounts adminAccounts, opts seedOptions) error {
	if opts.Password == "" {
		cmdCtx.Logger.Warn("ADMIN_PASSWORD not set; using the default password, change it after first login")
		opts.Password = defaultSeedPassword
	}

	account, err := accounts.SeedAdmin(ctx, service.SeedAdminInput{
		Email:    opts.Email,
		Password: opts.Password,
		Name:     opts.Name,
	})
	if errors.Is(err, service.ErrAdminExists) {
		cmdCtx.Logger.Info("admin already exists; nothing to do", "email", domainauth.NormalizeEmail(opts.Email))
		return writef(cmdCtx.Out, "Admin %s already exists, skipping.\n", domainauth.NormalizeEmail(opts.Email))
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	cmdCtx.Logger.Info("admin created", "email", account.Email, "id", account.ID)
	return writef(cmdCtx.Out, "Created admin %s (%s).\n", account.Email, account.DisplayName())
}

func runListAdmins(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-admins", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	timeout := fs.Duration("timeout", defaultCommandTimeout, "Maximum duration for the command")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withAdminAccounts(cmdCtx, *timeout, func(ctx context.Context, accounts adminAccounts) error {
		admins, err := accounts.ListAdmins(ctx)
		if err != nil {
			return err
		}
		return renderAdminTable(cmdCtx.Out, admins)
	})
}

func renderAdminTable(w io.Writer, admins []domainauth.AdminAccount) error {
	if len(admins) == 0 {
		return writeln(w, "No admin accounts found.")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "EMAIL\tNAME\tROLE\tACTIVE\tCREATED (UTC)\tLAST LOGIN (UTC)"); err != nil {
		return fmt.Errorf("write admins header row: %w", err)
	}
	for _, a := range admins {
		lastLogin := "never"
		if a.LastLoginAt != nil {
			lastLogin = formatTimestamp(*a.LastLoginAt)
		}
		if err := writef(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			a.Email,
			a.DisplayName(),
			a.Role,
			a.IsActive,
			formatTimestamp(a.CreatedAt),
			lastLogin,
		); err != nil {
			return fmt.Errorf("write admins row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush admins table: %w", err)
	}
	return nil
}

func runValidateEnv(cmdCtx *commandContext, _ []string) error {
	report := cmdCtx.Config.Validate()
	if err := printValidationReport(cmdCtx.Out, cmdCtx.Config.Environment, report); err != nil {
		return err
	}
	if report.HasErrors() {
		return fmt.Errorf("environment validation failed with %d error(s)", len(report.Errors()))
	}
	return nil
}

func printValidationReport(w io.Writer, environment string, report config.ValidationReport) error {
	if err := writef(w, "Environment: %s\n", environment); err != nil {
		return err
	}
	if len(report.Findings) == 0 {
		return writeln(w, "All required environment variables are set.")
	}
	for _, f := range report.Errors() {
		if err := writeln(w, f.String()); err != nil {
			return err
		}
	}
	for _, f := range report.Warnings() {
		if err := writeln(w, f.String()); err != nil {
			return err
		}
	}
	return writef(w, "%d error(s), %d warning(s)\n", len(report.Errors()), len(report.Warnings()))
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

// withAdminAccounts connects the database and builds the admin auth service
// with the in-memory limiter; the CLI never needs shared counters.
func withAdminAccounts(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, adminAccounts) error,
) error {
	return withDatabase(cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
		authCfg := cmdCtx.Config.Auth
		authCfg.RateLimitStore = config.RateLimitStoreMemory

		svc, err := bootstrap.BuildAuthService(bootstrap.AuthConfig{
			Auth:       authCfg,
			Production: cmdCtx.Config.IsProduction(),
			DB:         db,
			Logger:     cmdCtx.Logger,
		})
		if err != nil {
			return fmt.Errorf("build admin service: %w", err)
		}
		return f(ctx, svc)
	})
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
