package request

type ApproveBookingRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type RescheduleBookingRequest struct {
	NewDate string `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewTime string `json:"new_time" validate:"required,datetime=15:04"`
	Reason  string `json:"reason" validate:"omitempty,max=500"`
}

// PendingBookingsQuery is read from the query string.
type PendingBookingsQuery struct {
	BookingType string `validate:"omitempty,oneof=test doctor medicine"`
	DateFrom    string `validate:"omitempty,datetime=2006-01-02"`
	DateTo      string `validate:"omitempty,datetime=2006-01-02"`
}
