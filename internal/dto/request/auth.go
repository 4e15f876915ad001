package request

// ClientInfo is filled by the handler from the HTTP request, never from the
// body.
type ClientInfo struct {
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Mobile   string `json:"mobile" validate:"required,numeric,len=10"`
	Address  string `json:"address" validate:"omitempty,max=500"`
	ClientInfo
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientInfo
}
