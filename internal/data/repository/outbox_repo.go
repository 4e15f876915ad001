package repository

import (
	"context"
	"fmt"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OutboxRepository interface {
	InsertBatch(ctx context.Context, msgs []*entity.OutboxMessage) error
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]*entity.OutboxMessage, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, next time.Time, dead bool) error
	ListDead(ctx context.Context, limit, offset int) ([]*entity.OutboxMessage, error)
}

type outboxRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOutboxRepository(db database.PgxIface, log *zap.Logger) OutboxRepository {
	return &outboxRepository{
		db:  db,
		log: log.With(zap.String("repository", "outbox")),
	}
}

const outboxColumns = `id, booking_id, event, channel, recipient, subject, body, payload,
	status, attempts, last_error, next_attempt_at, delivered_at, created_at`

// InsertBatch enqueues every message of one event in a single transaction so
// an event is either fully queued or not at all.
func (r *outboxRepository) InsertBatch(ctx context.Context, msgs []*entity.OutboxMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin outbox transaction", zap.Error(err))
		return fmt.Errorf("begin outbox insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO outbox (id, booking_id, event, channel, recipient, subject, body, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING next_attempt_at, created_at
	`

	for _, msg := range msgs {
		err := tx.QueryRow(ctx, query,
			msg.ID,
			msg.BookingID,
			msg.Event,
			msg.Channel,
			msg.Recipient,
			msg.Subject,
			msg.Body,
			msg.Payload,
			msg.Status,
		).Scan(&msg.NextAttemptAt, &msg.CreatedAt)

		if err != nil {
			r.log.Error("Failed to insert outbox message",
				zap.Error(err),
				zap.String("event", msg.Event),
				zap.String("channel", msg.Channel),
			)
			return fmt.Errorf("insert outbox %s/%s: %w", msg.Event, msg.Channel, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit outbox messages", zap.Error(err))
		return fmt.Errorf("commit outbox insert: %w", err)
	}
	return nil
}

// ClaimDue leases up to limit pending rows whose next attempt is due by
// pushing next_attempt_at forward, so a second worker skips them.
func (r *outboxRepository) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]*entity.OutboxMessage, error) {
	query := `
		UPDATE outbox
		SET next_attempt_at = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status = 'pending' AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	rows, err := r.db.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		r.log.Error("Failed to claim outbox messages", zap.Error(err))
		return nil, fmt.Errorf("claim outbox: %w", err)
	}
	defer rows.Close()

	return scanOutbox(rows)
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE outbox SET status = 'delivered', delivered_at = NOW(), attempts = attempts + 1 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to mark outbox delivered", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("mark outbox %s delivered: %w", id.String(), err)
	}
	return nil
}

// MarkFailed records a failed attempt. With dead set the row leaves the
// pending queue for good.
func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, next time.Time, dead bool) error {
	status := entity.OutboxStatusPending
	if dead {
		status = entity.OutboxStatusDead
	}

	query := `UPDATE outbox SET status = $2, attempts = $3, last_error = $4, next_attempt_at = $5 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, status, attempts, lastErr, next); err != nil {
		r.log.Error("Failed to mark outbox failed", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("mark outbox %s failed: %w", id.String(), err)
	}
	return nil
}

func (r *outboxRepository) ListDead(ctx context.Context, limit, offset int) ([]*entity.OutboxMessage, error) {
	query := `SELECT ` + outboxColumns + ` FROM outbox WHERE status = 'dead' ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list dead outbox messages", zap.Error(err))
		return nil, fmt.Errorf("list dead outbox: %w", err)
	}
	defer rows.Close()

	return scanOutbox(rows)
}

func scanOutbox(rows pgx.Rows) ([]*entity.OutboxMessage, error) {
	var out []*entity.OutboxMessage
	for rows.Next() {
		var m entity.OutboxMessage
		err := rows.Scan(
			&m.ID,
			&m.BookingID,
			&m.Event,
			&m.Channel,
			&m.Recipient,
			&m.Subject,
			&m.Body,
			&m.Payload,
			&m.Status,
			&m.Attempts,
			&m.LastError,
			&m.NextAttemptAt,
			&m.DeliveredAt,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return out, nil
}
