package response

import "care-booking/internal/data/entity"

type PatientResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Mobile      string  `json:"mobile"`
	Email       string  `json:"email,omitempty"`
	Address     string  `json:"address,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
}

func PatientToResponse(p *entity.Patient) PatientResponse {
	return PatientResponse{
		ID:          p.ID.String(),
		FullName:    p.FullName,
		Mobile:      p.Mobile,
		Email:       p.Email,
		Address:     p.Address,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
	}
}
