package request

type PaymentSessionRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

// VerifyPaymentRequest is the checkout callback relayed by the client.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type PaymentFailureRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}
