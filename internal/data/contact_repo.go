package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/halayachts/hala-api/internal/data/pgxutil"
	"github.com/halayachts/hala-api/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, first_name, last_name, email, phone, country_code, message, is_read, created_at`

// ContactRepo stores contact form submissions.
type ContactRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewContactRepo creates a new ContactRepo with real time provider.
func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewContactRepoWithTimeProvider creates a new ContactRepo with a custom time provider.
func NewContactRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ContactRepo {
	return &ContactRepo{DB: db, timeProvider: tp}
}

// Create inserts msg as an unread message and returns the stored row.
func (r *ContactRepo) Create(ctx context.Context, msg *model.ContactMessage) (*model.ContactMessage, error) {
	if msg == nil {
		return nil, errors.New("contact message is required")
	}

	var out model.ContactMessage
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO contact_messages (id, first_name, last_name, email, phone, country_code, message, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
			RETURNING `+contactColumns,
			uuid.NewString(),
			msg.FirstName,
			msg.LastName,
			msg.Email,
			msg.Phone,
			msg.CountryCode,
			msg.Message,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ContactMessage])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact message: %w", err)
	}
	return &out, nil
}

// List returns messages newest first.
func (r *ContactRepo) List(ctx context.Context, opts model.ContactListOptions) ([]model.ContactMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(opts.Offset, 0)

	var out []model.ContactMessage
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+contactColumns+`
			FROM contact_messages
			ORDER BY created_at DESC, id DESC
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ContactMessage])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return out, nil
}
