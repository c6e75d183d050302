package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/halayachts/hala-api/internal/data/pgxutil"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

const (
	yachtColumns = `id, yacht_id, title, slug, slugs, status, attributes, created_at, updated_at`

	yachtPrimaryKey = "yachts_pkey"
)

// YachtRepo stores the yacht catalog.
type YachtRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewYachtRepo creates a new YachtRepo with real time provider.
func NewYachtRepo(db *sql.DB) *YachtRepo {
	return &YachtRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewYachtRepoWithTimeProvider creates a new YachtRepo with a custom time provider.
func NewYachtRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *YachtRepo {
	return &YachtRepo{DB: db, timeProvider: tp}
}

// List returns every yacht ordered by id.
func (r *YachtRepo) List(ctx context.Context) ([]model.Yacht, error) {
	var out []model.Yacht
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+yachtColumns+` FROM yachts ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Yacht])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list yachts: %w", err)
	}
	return out, nil
}

// Create inserts a prepared request. Creators are serialized by a table lock
// so the slug check and the max+1 id assignment see a stable catalog.
func (r *YachtRepo) Create(ctx context.Context, req *model.CreateYachtRequest) (*model.Yacht, error) {
	if req == nil {
		return nil, errors.New("create yacht request is required")
	}
	if req.Slug == "" || req.Title == "" {
		return nil, errors.New("yacht title and slug are required")
	}

	now := r.timeProvider.Now().UTC()
	var out model.Yacht
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `LOCK TABLE yachts IN SHARE ROW EXCLUSIVE MODE`); err != nil {
				return fmt.Errorf("lock yachts: %w", err)
			}

			var taken bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM yachts WHERE slug = $1 OR $1 = ANY(slugs))`, req.Slug,
			).Scan(&taken); err != nil {
				return fmt.Errorf("check slug: %w", err)
			}
			if taken {
				return ErrYachtSlugExists
			}

			var id int64
			if req.ID != nil {
				id = *req.ID
			} else if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM yachts`).Scan(&id); err != nil {
				return fmt.Errorf("next yacht id: %w", err)
			}

			y := req.Build(id)
			slugs := y.Slugs
			if slugs == nil {
				slugs = []string{}
			}
			rows, err := tx.Query(ctx, `
				INSERT INTO yachts (id, yacht_id, title, slug, slugs, status, attributes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
				RETURNING `+yachtColumns,
				y.ID, y.YachtID, y.Title, y.Slug, slugs, y.Status, y.Attributes, now,
			)
			if err != nil {
				return err
			}
			defer rows.Close()
			out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Yacht])
			return err
		},
	})
	if err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

func (r *YachtRepo) mapWriteErr(err error) error {
	switch {
	case errors.Is(err, ErrYachtSlugExists):
		return err
	case !apperrors.IsUniqueViolation(err):
		return fmt.Errorf("failed to create yacht: %w", err)
	case apperrors.UniqueConstraint(err) == yachtPrimaryKey:
		return ErrYachtIDExists
	default:
		return ErrYachtSlugExists
	}
}
