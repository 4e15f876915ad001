package response

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact"`
}

// SessionParams is handed to the checkout widget as-is.
type SessionParams struct {
	Key         string            `json:"key"`
	OrderID     string            `json:"order_id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes"`
}

type VerifyResult struct {
	Success bool            `json:"success"`
	Replay  bool            `json:"replay,omitempty"`
	Booking BookingResponse `json:"booking"`
}
