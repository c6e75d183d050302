package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/halayachts/hala-api/internal/data/pgxutil"
	"github.com/halayachts/hala-api/internal/domain/model"
	apperrors "github.com/halayachts/hala-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

// SubscriberRepo stores newsletter subscriptions.
type SubscriberRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSubscriberRepo creates a new SubscriberRepo with real time provider.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo {
	return &SubscriberRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSubscriberRepoWithTimeProvider creates a new SubscriberRepo with a custom time provider.
func NewSubscriberRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SubscriberRepo {
	return &SubscriberRepo{DB: db, timeProvider: tp}
}

// Create subscribes email. Emails are stored lowercased.
func (r *SubscriberRepo) Create(ctx context.Context, email string) (*model.Subscriber, error) {
	var out model.Subscriber
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO subscribers (id, email, created_at)
			VALUES ($1, $2, $3)
			RETURNING id, email, created_at`,
			uuid.NewString(), normalizeEmail(email), r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Subscriber])
		return err
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrSubscriberExists
		}
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	return &out, nil
}

// Stats returns the subscriber total and the most recent subscriptions.
func (r *SubscriberRepo) Stats(ctx context.Context, recent int) (model.SubscriberStats, error) {
	if recent <= 0 {
		recent = model.RecentSubscriberLimit
	}
	stats := model.SubscriberStats{RecentSubscribers: []model.RecentSubscriber{}}
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
		Fn: func(tx pgx.Tx) error {
			if err := tx.QueryRow(ctx, `SELECT count(*) FROM subscribers`).Scan(&stats.TotalSubscribers); err != nil {
				return err
			}
			rows, err := tx.Query(ctx, `
				SELECT email, created_at AS subscribed_at
				FROM subscribers
				ORDER BY created_at DESC, id DESC
				LIMIT $1`, recent)
			if err != nil {
				return err
			}
			defer rows.Close()
			list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RecentSubscriber, error) {
				var s model.RecentSubscriber
				err := row.Scan(&s.Email, &s.SubscribedAt)
				return s, err
			})
			if err != nil {
				return err
			}
			stats.RecentSubscribers = append(stats.RecentSubscribers, list...)
			return nil
		},
	})
	if err != nil {
		return model.SubscriberStats{}, fmt.Errorf("failed to get subscriber stats: %w", err)
	}
	return stats, nil
}
