package request

type UpdatePatientRequest struct {
	FullName    string  `json:"full_name" validate:"required,min=2,max=100"`
	Mobile      string  `json:"mobile" validate:"required,numeric,len=10"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Address     string  `json:"address" validate:"omitempty,max=500"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
}
