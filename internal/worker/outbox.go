// Package worker runs the background delivery of queued notifications.
package worker

import (
	"context"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/pkg/metrics"
	"care-booking/pkg/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type outboxStore interface {
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]*entity.OutboxMessage, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, next time.Time, dead bool) error
}

type sender interface {
	Send(ctx context.Context, msg notify.Message) error
}

const maxBackoff = 6 * time.Hour

// OutboxWorker delivers pending outbox rows. Failed rows are retried with
// exponential backoff until maxAttempts, after which they stay behind as dead
// letters.
type OutboxWorker struct {
	store       outboxStore
	sender      sender
	metrics     *metrics.BookingMetrics
	log         *zap.Logger
	maxAttempts int
	baseDelay   time.Duration
	interval    time.Duration
	batchSize   int
	lease       time.Duration
	now         func() time.Time
}

func NewOutboxWorker(store outboxStore, s sender, m *metrics.BookingMetrics, log *zap.Logger) *OutboxWorker {
	return &OutboxWorker{
		store:       store,
		sender:      s,
		metrics:     m,
		log:         log.With(zap.String("worker", "outbox")),
		maxAttempts: 5,
		baseDelay:   30 * time.Second,
		interval:    5 * time.Second,
		batchSize:   25,
		lease:       2 * time.Minute,
		now:         time.Now,
	}
}

func (w *OutboxWorker) WithMaxAttempts(n int) *OutboxWorker {
	if n > 0 {
		w.maxAttempts = n
	}
	return w
}

func (w *OutboxWorker) WithBaseDelay(d time.Duration) *OutboxWorker {
	if d > 0 {
		w.baseDelay = d
	}
	return w
}

func (w *OutboxWorker) WithInterval(d time.Duration) *OutboxWorker {
	if d > 0 {
		w.interval = d
	}
	return w
}

func (w *OutboxWorker) WithBatchSize(n int) *OutboxWorker {
	if n > 0 {
		w.batchSize = n
	}
	return w
}

// Run drains once immediately and then on every tick until ctx is done.
func (w *OutboxWorker) Run(ctx context.Context) {
	w.log.Info("Outbox worker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize),
		zap.Int("max_attempts", w.maxAttempts),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Drain(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain delivers one batch and returns how many rows were delivered.
func (w *OutboxWorker) Drain(ctx context.Context) int {
	msgs, err := w.store.ClaimDue(ctx, w.batchSize, w.lease)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("Outbox claim failed", zap.Error(err))
		}
		return 0
	}

	delivered := 0
	for _, m := range msgs {
		if ctx.Err() != nil {
			return delivered
		}
		if w.deliver(ctx, m) {
			delivered++
		}
	}
	return delivered
}

func (w *OutboxWorker) deliver(ctx context.Context, m *entity.OutboxMessage) bool {
	err := w.sender.Send(ctx, notify.Message{
		Channel: m.Channel,
		To:      m.Recipient,
		Subject: m.Subject,
		Body:    m.Body,
		Payload: m.Payload,
	})
	if err == nil {
		if err := w.store.MarkDelivered(ctx, m.ID); err != nil {
			w.log.Error("Failed to mark outbox row delivered", zap.Error(err), zap.String("id", m.ID.String()))
		}
		w.metrics.ObserveDelivery(m.Channel, "delivered")
		return true
	}

	attempts := m.Attempts + 1
	dead := attempts >= w.maxAttempts
	next := w.now().Add(w.nextDelay(m.Attempts))

	if markErr := w.store.MarkFailed(ctx, m.ID, attempts, err.Error(), next, dead); markErr != nil {
		w.log.Error("Failed to record outbox failure", zap.Error(markErr), zap.String("id", m.ID.String()))
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("id", m.ID.String()),
		zap.String("event", m.Event),
		zap.String("channel", m.Channel),
		zap.Int("attempts", attempts),
	}
	if dead {
		w.metrics.ObserveDelivery(m.Channel, "dead")
		w.log.Error("Outbox row moved to dead letters", fields...)
	} else {
		w.metrics.ObserveDelivery(m.Channel, "retry")
		w.log.Warn("Outbox delivery failed", append(fields, zap.Time("next_attempt_at", next))...)
	}
	return false
}

func (w *OutboxWorker) nextDelay(attempts int) time.Duration {
	if attempts > 20 {
		return maxBackoff
	}
	delay := w.baseDelay * time.Duration(1<<attempts)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}
