package request

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PaginatedRequest comes from the page/per_page query values. Out of range
// values are clamped, never rejected.
type PaginatedRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func (p PaginatedRequest) CurrentPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

func (p PaginatedRequest) Limit() int {
	switch {
	case p.PerPage < 1:
		return DefaultPerPage
	case p.PerPage > MaxPerPage:
		return MaxPerPage
	}
	return p.PerPage
}

func (p PaginatedRequest) Offset() int {
	return (p.CurrentPage() - 1) * p.Limit()
}
