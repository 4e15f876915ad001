package entity

// LabTest is a diagnostic test in the catalog, keyed by its lab code.
type LabTest struct {
	BaseNoDelete
	Code        string  `db:"code"`
	Name        string  `db:"name"`
	Category    string  `db:"category"`
	MRP         float64 `db:"mrp"`
	SampleType  string  `db:"sample_type"`
	TAT         string  `db:"tat"`
	IsActive    bool    `db:"is_active"`
	Description string  `db:"description"`
}

type Doctor struct {
	BaseNoDelete
	FullName        string  `db:"full_name"`
	Specialization  string  `db:"specialization"`
	Qualification   string  `db:"qualification"`
	ExperienceYears int     `db:"experience_years"`
	ConsultationFee float64 `db:"consultation_fee"`
	IsAvailable     bool    `db:"is_available"`
}
