package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/halayachts/hala-api/internal/data/pgxutil"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, booking_reference, first_name, last_name, email, phone, charter_type, passengers,
	yacht_title, yacht_slug, location, message, charter_date, check_in_date, check_out_date,
	status, created_at, updated_at`

// BookingRepo stores charter enquiries.
type BookingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBookingRepo creates a new BookingRepo with real time provider.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBookingRepoWithTimeProvider creates a new BookingRepo with a custom time provider.
func NewBookingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: tp}
}

// Create inserts b. The reference must already be assigned.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	if b == nil {
		return nil, errors.New("booking is required")
	}
	if b.BookingReference == "" {
		return nil, errors.New("booking reference is required")
	}
	status := b.Status
	if status == "" {
		status = model.BookingStatusPending
	}

	now := r.timeProvider.Now().UTC()
	var out model.Booking
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO bookings (
				id, booking_reference, first_name, last_name, email, phone, charter_type, passengers,
				yacht_title, yacht_slug, location, message, charter_date, check_in_date, check_out_date,
				status, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17
			) RETURNING `+bookingColumns,
			uuid.NewString(),
			b.BookingReference,
			b.FirstName,
			b.LastName,
			b.Email,
			b.Phone,
			b.CharterType,
			b.Passengers,
			b.YachtTitle,
			b.YachtSlug,
			b.Location,
			b.Message,
			b.Date,
			b.CheckInDate,
			b.CheckOutDate,
			string(status),
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Booking])
		return err
	})
	if err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// List returns one page of bookings, newest first, plus the total number of
// bookings matching the status filter.
func (r *BookingRepo) List(ctx context.Context, opts model.BookingListOptions) ([]model.Booking, int, error) {
	opts.Normalize()
	var status *string
	if opts.Status != nil {
		s := string(*opts.Status)
		status = &s
	}

	var (
		out   []model.Booking
		total int
	)
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
		Fn: func(tx pgx.Tx) error {
			if err := tx.QueryRow(ctx,
				`SELECT count(*) FROM bookings WHERE ($1::text IS NULL OR status = $1)`, status,
			).Scan(&total); err != nil {
				return err
			}
			rows, err := tx.Query(ctx, `
				SELECT `+bookingColumns+`
				FROM bookings
				WHERE ($1::text IS NULL OR status = $1)
				ORDER BY created_at DESC, id DESC
				LIMIT $2 OFFSET $3`, status, opts.Limit, opts.Offset())
			if err != nil {
				return err
			}
			defer rows.Close()
			out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Booking])
			return err
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return out, total, nil
}

func (r *BookingRepo) mapWriteErr(err error) error {
	if apperrors.IsUniqueViolation(err) {
		return ErrBookingReferenceExists
	}
	return fmt.Errorf("failed to create booking: %w", err)
}
