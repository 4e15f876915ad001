package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/pkg/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failure struct {
	attempts int
	lastErr  string
	next     time.Time
	dead     bool
}

type memoryStore struct {
	mu        sync.Mutex
	due       []*entity.OutboxMessage
	claimErr  error
	claims    int
	delivered []uuid.UUID
	failed    map[uuid.UUID]failure
}

func (s *memoryStore) ClaimDue(_ context.Context, limit int, _ time.Duration) ([]*entity.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims++
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	n := limit
	if n > len(s.due) {
		n = len(s.due)
	}
	out := s.due[:n]
	s.due = s.due[n:]
	return out, nil
}

func (s *memoryStore) MarkDelivered(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, id)
	return nil
}

func (s *memoryStore) MarkFailed(_ context.Context, id uuid.UUID, attempts int, lastErr string, next time.Time, dead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = make(map[uuid.UUID]failure)
	}
	s.failed[id] = failure{attempts: attempts, lastErr: lastErr, next: next, dead: dead}
	return nil
}

type scriptedSender struct {
	mu   sync.Mutex
	sent []notify.Message
	errs map[string]error
}

func (s *scriptedSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[msg.Channel]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func row(channel string, attempts int) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		Event:      "approved",
		Channel:    channel,
		Recipient:  "9876543210",
		Body:       "Your booking BK-123456-007 is approved",
		Status:     entity.OutboxStatusPending,
		Attempts:   attempts,
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
}

func TestDrain_DeliversAndMarks(t *testing.T) {
	sms, email := row("sms", 0), row("email", 0)
	store := &memoryStore{due: []*entity.OutboxMessage{sms, email}}
	sender := &scriptedSender{}
	w := NewOutboxWorker(store, sender, nil, zap.NewNop())

	delivered := w.Drain(context.Background())

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []uuid.UUID{sms.ID, email.ID}, store.delivered)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "9876543210", sender.sent[0].To)
	assert.Empty(t, store.failed)
}

func TestDrain_FailureSchedulesBackoff(t *testing.T) {
	msg := row("sms", 2)
	store := &memoryStore{due: []*entity.OutboxMessage{msg}}
	sender := &scriptedSender{errs: map[string]error{"sms": errors.New("twilio returned 503")}}
	w := NewOutboxWorker(store, sender, nil, zap.NewNop()).WithBaseDelay(time.Minute).WithMaxAttempts(5)
	w.now = fixedClock

	assert.Zero(t, w.Drain(context.Background()))

	got := store.failed[msg.ID]
	assert.Equal(t, 3, got.attempts)
	assert.Equal(t, "twilio returned 503", got.lastErr)
	assert.False(t, got.dead)
	assert.Equal(t, fixedClock().Add(4*time.Minute), got.next)
}

func TestDrain_DeadAfterMaxAttempts(t *testing.T) {
	msg := row("crm", 4)
	store := &memoryStore{due: []*entity.OutboxMessage{msg}}
	sender := &scriptedSender{errs: map[string]error{"crm": errors.New("webhook returned 500")}}
	w := NewOutboxWorker(store, sender, nil, zap.NewNop()).WithMaxAttempts(5)

	w.Drain(context.Background())

	got := store.failed[msg.ID]
	assert.True(t, got.dead)
	assert.Equal(t, 5, got.attempts)
	assert.Empty(t, store.delivered)
}

func TestDrain_OneBadChannelDoesNotBlockOthers(t *testing.T) {
	bad, good := row("email", 0), row("sms", 0)
	store := &memoryStore{due: []*entity.OutboxMessage{bad, good}}
	sender := &scriptedSender{errs: map[string]error{"email": errors.New("sendgrid returned 401")}}
	w := NewOutboxWorker(store, sender, nil, zap.NewNop())

	assert.Equal(t, 1, w.Drain(context.Background()))
	assert.Equal(t, []uuid.UUID{good.ID}, store.delivered)
	assert.Contains(t, store.failed, bad.ID)
}

func TestDrain_ClaimError(t *testing.T) {
	store := &memoryStore{claimErr: errors.New("pool closed")}
	w := NewOutboxWorker(store, &scriptedSender{}, nil, zap.NewNop())

	assert.Zero(t, w.Drain(context.Background()))
}

func TestDrain_RespectsBatchSize(t *testing.T) {
	store := &memoryStore{due: []*entity.OutboxMessage{row("sms", 0), row("sms", 0), row("sms", 0)}}
	w := NewOutboxWorker(store, &scriptedSender{}, nil, zap.NewNop()).WithBatchSize(2)

	assert.Equal(t, 2, w.Drain(context.Background()))
	assert.Len(t, store.due, 1)
}

func TestNextDelay_Capped(t *testing.T) {
	w := NewOutboxWorker(&memoryStore{}, &scriptedSender{}, nil, zap.NewNop()).WithBaseDelay(time.Minute)

	assert.Equal(t, time.Minute, w.nextDelay(0))
	assert.Equal(t, 8*time.Minute, w.nextDelay(3))
	assert.Equal(t, maxBackoff, w.nextDelay(12))
	assert.Equal(t, maxBackoff, w.nextDelay(64))
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := &memoryStore{}
	w := NewOutboxWorker(store, &scriptedSender{}, nil, zap.NewNop()).WithInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.GreaterOrEqual(t, store.claims, 2)
}
