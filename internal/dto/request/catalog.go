package request

type UpsertTestRequest struct {
	Code        string  `json:"code" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
	MRP         float64 `json:"mrp" validate:"gte=0"`
	SampleType  string  `json:"sample_type" validate:"omitempty,max=100"`
	TAT         string  `json:"tat" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
}

type CreateDoctorRequest struct {
	FullName        string  `json:"full_name" validate:"required,min=2,max=100"`
	Specialization  string  `json:"specialization" validate:"required,max=100"`
	Qualification   string  `json:"qualification" validate:"omitempty,max=200"`
	ExperienceYears int     `json:"experience_years" validate:"gte=0,lte=80"`
	ConsultationFee float64 `json:"consultation_fee" validate:"gte=0"`
}

type TestListQuery struct {
	Category string
	PaginatedRequest
}

type DoctorListQuery struct {
	Specialization string
	PaginatedRequest
}
