package data

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/halayachts/hala-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRepo_CreateAndLookup(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminRepoWithTimeProvider(db, NewFixedTimeProvider(testutil.TestTime()))

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		admin, err := repo.Create(ctx, ports.NewAdmin{
			Email:        "  Owner@HalaYachts.com ",
			PasswordHash: "$2a$12$digest",
			Name:         "Owner",
			Bootstrap:    true,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, admin.ID)
		assert.Equal(t, "owner@halayachts.com", admin.Email)
		assert.Equal(t, domainauth.RoleAdmin, admin.Role)
		assert.True(t, admin.IsActive)
		assert.Nil(t, admin.LastLoginAt)
		assert.True(t, admin.CreatedAt.Equal(testutil.TestTime()))

		got, err := repo.GetActiveByEmail(ctx, "OWNER@halayachts.com")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, got.ID)
		assert.Equal(t, "$2a$12$digest", got.PasswordHash)

		exists, err := repo.ExistsByEmail(ctx, "owner@halayachts.com ")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@halayachts.com")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.GetActiveByEmail(ctx, "nobody@halayachts.com")
		require.ErrorIs(t, err, ErrAdminNotFound)

		n, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestAdminRepo_UniqueViolations(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminRepo(db)

		_, err := repo.Create(ctx, ports.NewAdmin{Email: "first@halayachts.com", PasswordHash: "h", Bootstrap: true})
		require.NoError(t, err)

		_, err = repo.Create(ctx, ports.NewAdmin{Email: "FIRST@halayachts.com", PasswordHash: "h"})
		require.ErrorIs(t, err, ErrAdminEmailExists)

		_, err = repo.Create(ctx, ports.NewAdmin{Email: "second@halayachts.com", PasswordHash: "h", Bootstrap: true})
		require.ErrorIs(t, err, ErrAdminAlreadyBootstrapped)

		// Seeded admins are not bootstrap registrations.
		_, err = repo.Create(ctx, ports.NewAdmin{Email: "third@halayachts.com", PasswordHash: "h"})
		require.NoError(t, err)
	})
}

func TestAdminRepo_ConcurrentBootstrap(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminRepo(db)
		emails := []string{"a@halayachts.com", "b@halayachts.com", "c@halayachts.com"}
		errs := make([]error, len(emails))
		var wg sync.WaitGroup
		for i, email := range emails {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = repo.Create(ctx, ports.NewAdmin{Email: email, PasswordHash: "h", Bootstrap: true})
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, ErrAdminAlreadyBootstrapped), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestAdminRepo_TouchLastLoginAndList(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		clock := NewFixedTimeProvider(testutil.TestTime())
		repo := NewAdminRepoWithTimeProvider(db, clock)

		first, err := repo.Create(ctx, ports.NewAdmin{Email: "first@halayachts.com", PasswordHash: "h"})
		require.NoError(t, err)
		clock.AddTime(time.Minute)
		_, err = repo.Create(ctx, ports.NewAdmin{Email: "second@halayachts.com", PasswordHash: "h", Name: "Second"})
		require.NoError(t, err)

		at := testutil.TestTime().Add(time.Hour)
		require.NoError(t, repo.TouchLastLogin(ctx, first.ID, at))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "first@halayachts.com", list[0].Email)
		require.NotNil(t, list[0].LastLoginAt)
		assert.True(t, list[0].LastLoginAt.Equal(at))
		assert.Equal(t, "Second", list[1].DisplayName())
		assert.Equal(t, domainauth.DefaultAdminName, list[0].DisplayName())

		err = repo.TouchLastLogin(ctx, "00000000-0000-0000-0000-000000000000", at)
		require.ErrorIs(t, err, ErrAdminNotFound)
	})
}

func TestAdminRepo_InactiveAccountsAreHidden(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAdminRepo(db)

		admin, err := repo.Create(ctx, ports.NewAdmin{Email: "off@halayachts.com", PasswordHash: "h"})
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `UPDATE admins SET is_active = FALSE WHERE id = $1`, admin.ID)
		require.NoError(t, err)

		_, err = repo.GetActiveByEmail(ctx, "off@halayachts.com")
		require.ErrorIs(t, err, ErrAdminNotFound)

		exists, err := repo.ExistsByEmail(ctx, "off@halayachts.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
