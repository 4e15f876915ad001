package request

type CreateBookingRequest struct {
	BookingType     string  `json:"booking_type" validate:"required,oneof=test doctor medicine"`
	ItemID          string  `json:"item_id" validate:"omitempty,uuid"`
	ItemName        string  `json:"item_name" validate:"omitempty,max=200"`
	PatientName     string  `json:"patient_name" validate:"required,min=2,max=100"`
	PatientMobile   string  `json:"patient_mobile" validate:"required,numeric,len=10"`
	PatientEmail    string  `json:"patient_email" validate:"omitempty,email"`
	PatientAddress  string  `json:"patient_address" validate:"omitempty,max=500"`
	AppointmentDate string  `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	AppointmentTime string  `json:"appointment_time" validate:"omitempty,datetime=15:04"`
	TotalAmount     float64 `json:"total_amount" validate:"gte=0"`
	Notes           string  `json:"notes" validate:"omitempty,max=1000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
