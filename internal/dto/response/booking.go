package response

import (
	"time"

	"care-booking/internal/data/entity"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	ReferenceNumber string               `json:"reference_number"`
	BookingType     entity.BookingType   `json:"booking_type"`
	PatientName     string               `json:"patient_name"`
	PatientMobile   string               `json:"patient_mobile"`
	PatientEmail    string               `json:"patient_email,omitempty"`
	PatientAddress  string               `json:"patient_address,omitempty"`
	ItemID          *string              `json:"item_id,omitempty"`
	ItemName        string               `json:"item_name,omitempty"`
	AppointmentDate string               `json:"appointment_date"`
	AppointmentTime string               `json:"appointment_time,omitempty"`
	TotalAmount     float64              `json:"total_amount"`
	PaymentStatus   entity.PaymentStatus `json:"payment_status"`
	PaymentID       *string              `json:"payment_id,omitempty"`
	OrderID         *string              `json:"order_id,omitempty"`
	Status          entity.BookingStatus `json:"status"`
	Notes           string               `json:"notes,omitempty"`

	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	RejectedAt           *time.Time `json:"rejected_at,omitempty"`
	RejectionReason      *string    `json:"rejection_reason,omitempty"`
	RescheduleReason     *string    `json:"reschedule_reason,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason   *string    `json:"cancellation_reason,omitempty"`
	PaymentFailureReason *string    `json:"payment_failure_reason,omitempty"`

	WhatsAppLink string    `json:"whatsapp_link,omitempty"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                   b.ID.String(),
		ReferenceNumber:      b.ReferenceNumber,
		BookingType:          b.BookingType,
		PatientName:          b.PatientName,
		PatientMobile:        b.PatientMobile,
		PatientEmail:         b.PatientEmail,
		PatientAddress:       b.PatientAddress,
		ItemName:             b.ItemName,
		AppointmentDate:      b.AppointmentDate.Format("2006-01-02"),
		AppointmentTime:      b.AppointmentTime,
		TotalAmount:          b.TotalAmount,
		PaymentStatus:        b.PaymentStatus,
		PaymentID:            b.PaymentID,
		OrderID:              b.OrderID,
		Status:               b.Status,
		Notes:                b.Notes,
		ApprovedAt:           b.ApprovedAt,
		RejectedAt:           b.RejectedAt,
		RejectionReason:      b.RejectionReason,
		RescheduleReason:     b.RescheduleReason,
		CompletedAt:          b.CompletedAt,
		CancelledAt:          b.CancelledAt,
		CancellationReason:   b.CancellationReason,
		PaymentFailureReason: b.PaymentFailureReason,
		Version:              b.Version,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
	if b.ItemID != nil {
		id := b.ItemID.String()
		resp.ItemID = &id
	}
	return resp
}

// StatsResponse is the dashboard rollup. Pending counts bookings still
// awaiting review (Payment Pending and Paid).
type StatsResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Tests    int `json:"tests"`
	Doctors  int `json:"doctors"`
	Medicine int `json:"medicine"`
}
