package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records one gateway outcome for a booking (verified capture or
// failure). It is an audit trail, the booking row stays authoritative.
type Payment struct {
	BaseNoDelete
	BookingID     uuid.UUID     `db:"booking_id"`
	OrderID       *string       `db:"order_id"`
	PaymentID     *string       `db:"payment_id"`
	Amount        float64       `db:"amount"`
	Currency      string        `db:"currency"`
	Status        PaymentStatus `db:"status"`
	FailureReason *string       `db:"failure_reason"`
}
