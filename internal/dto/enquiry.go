package dto

import "time"

// EnquiryRequest is the intake payload. Validation mirrors the public form
// and is enforced server-side as well: direct API calls cannot insert
// malformed records.
type EnquiryRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,len=10,number"`
	Course  string `json:"course" validate:"required"`
	Branch  string `json:"branch" validate:"required"`
	Queries string `json:"queries"`
}

// EnquiryCreatedResponse confirms a stored enquiry.
type EnquiryCreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// StatsResponse aggregates dashboard counters and the facet values the
// filter dropdowns are built from.
type StatsResponse struct {
	Total       int            `json:"total"`
	ByBranch    map[string]int `json:"by_branch"`
	ByYear      map[int]int    `json:"by_year"`
	GeneratedAt time.Time      `json:"generated_at"`
}
