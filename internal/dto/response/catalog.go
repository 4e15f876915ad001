package response

import "care-booking/internal/data/entity"

type TestResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	MRP         float64 `json:"mrp"`
	SampleType  string  `json:"sample_type,omitempty"`
	TAT         string  `json:"tat,omitempty"`
	IsActive    bool    `json:"is_active"`
	Description string  `json:"description,omitempty"`
}

func TestToResponse(t *entity.LabTest) TestResponse {
	return TestResponse{
		ID:          t.ID.String(),
		Code:        t.Code,
		Name:        t.Name,
		Category:    t.Category,
		MRP:         t.MRP,
		SampleType:  t.SampleType,
		TAT:         t.TAT,
		IsActive:    t.IsActive,
		Description: t.Description,
	}
}

type DoctorResponse struct {
	ID              string  `json:"id"`
	FullName        string  `json:"full_name"`
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification,omitempty"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
	IsAvailable     bool    `json:"is_available"`
}

func DoctorToResponse(d *entity.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:              d.ID.String(),
		FullName:        d.FullName,
		Specialization:  d.Specialization,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
		ConsultationFee: d.ConsultationFee,
		IsAvailable:     d.IsAvailable,
	}
}
