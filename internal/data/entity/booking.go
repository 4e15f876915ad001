package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingType string

const (
	BookingTypeTest     BookingType = "test"
	BookingTypeDoctor   BookingType = "doctor"
	BookingTypeMedicine BookingType = "medicine"
)

type BookingStatus string

const (
	BookingStatusPaymentPending BookingStatus = "Payment Pending"
	BookingStatusPaymentFailed  BookingStatus = "Payment Failed"
	BookingStatusPaid           BookingStatus = "Paid"
	BookingStatusApproved       BookingStatus = "Approved"
	BookingStatusRejected       BookingStatus = "Rejected"
	BookingStatusRescheduled    BookingStatus = "Rescheduled"
	BookingStatusCompleted      BookingStatus = "Completed"
	BookingStatusCancelled      BookingStatus = "Cancelled"
)

var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingStatusPaymentPending: {
		BookingStatusPaid:          true,
		BookingStatusPaymentFailed: true,
		BookingStatusCancelled:     true,
	},
	BookingStatusPaymentFailed: {
		BookingStatusPaid:           true,
		BookingStatusPaymentPending: true, // retry
		BookingStatusCancelled:      true,
	},
	BookingStatusPaid: {
		BookingStatusApproved:    true,
		BookingStatusRejected:    true,
		BookingStatusRescheduled: true,
		BookingStatusCancelled:   true,
	},
	BookingStatusApproved: {
		BookingStatusRescheduled: true,
		BookingStatusCompleted:   true,
		BookingStatusCancelled:   true,
	},
	BookingStatusRescheduled: {
		BookingStatusRescheduled: true,
		BookingStatusCompleted:   true,
		BookingStatusCancelled:   true,
	},
	BookingStatusRejected:  {},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// CanTransition reports whether status may move from -> to.
func CanTransition(from, to BookingStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func (s BookingStatus) IsTerminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

func (s BookingStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Booking keeps a denormalized copy of the patient contact so the record stays
// meaningful when the profile changes later. Status transitions overwrite in
// place; history lives only in the audit columns.
type Booking struct {
	BaseNoDelete
	ReferenceNumber string      `db:"reference_number"`
	BookingType     BookingType `db:"booking_type"`
	PatientID       *uuid.UUID  `db:"patient_id"`

	PatientName    string `db:"patient_name"`
	PatientMobile  string `db:"patient_mobile"`
	PatientEmail   string `db:"patient_email"`
	PatientAddress string `db:"patient_address"`

	ItemID   *uuid.UUID `db:"item_id"`
	ItemName string     `db:"item_name"`

	AppointmentDate time.Time `db:"appointment_date"`
	AppointmentTime string    `db:"appointment_time"`

	TotalAmount   float64       `db:"total_amount"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentID     *string       `db:"payment_id"`
	OrderID       *string       `db:"order_id"`

	Status BookingStatus `db:"status"`
	Notes  string        `db:"notes"`

	ApprovedBy           *uuid.UUID `db:"approved_by"`
	ApprovedAt           *time.Time `db:"approved_at"`
	RejectedBy           *uuid.UUID `db:"rejected_by"`
	RejectedAt           *time.Time `db:"rejected_at"`
	RejectionReason      *string    `db:"rejection_reason"`
	RescheduledBy        *uuid.UUID `db:"rescheduled_by"`
	RescheduleReason     *string    `db:"reschedule_reason"`
	CompletedAt          *time.Time `db:"completed_at"`
	CancelledAt          *time.Time `db:"cancelled_at"`
	CancellationReason   *string    `db:"cancellation_reason"`
	PaymentFailureReason *string    `db:"payment_failure_reason"`

	Version int `db:"version"`
}
