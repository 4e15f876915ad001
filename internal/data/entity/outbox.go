package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusDelivered OutboxStatus = "delivered"
	OutboxStatusDead      OutboxStatus = "dead"
)

// OutboxMessage is one notification waiting for delivery on a single channel.
// Rows that exhaust their attempts stay in the table as the dead-letter log.
type OutboxMessage struct {
	BaseSimple
	BookingID     *uuid.UUID      `db:"booking_id"`
	Event         string          `db:"event"`
	Channel       string          `db:"channel"`
	Recipient     string          `db:"recipient"`
	Subject       string          `db:"subject"`
	Body          string          `db:"body"`
	Payload       json.RawMessage `db:"payload"`
	Status        OutboxStatus    `db:"status"`
	Attempts      int             `db:"attempts"`
	LastError     *string         `db:"last_error"`
	NextAttemptAt time.Time       `db:"next_attempt_at"`
	DeliveredAt   *time.Time      `db:"delivered_at"`
}
