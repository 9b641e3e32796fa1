package models

import (
	"strconv"
	"strings"
	"time"
)

// FilterAll is the dropdown sentinel meaning "no filter".
const FilterAll = "All"

// Enquiry is a single admission-interest submission. Records are created once
// via intake and never updated or deleted.
type Enquiry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Course    string    `db:"course" json:"course"`
	Branch    string    `db:"branch" json:"branch"`
	Queries   string    `db:"queries" json:"queries"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// EnquiryFilter narrows the visible record set. All fields are optional and
// combine with logical AND. The zero value matches every record.
type EnquiryFilter struct {
	Search string
	Branch string
	// Year filters on the calendar year of the creation timestamp; 0 means
	// no filter.
	Year int
	// Start is the inclusive lower bound on the creation timestamp.
	Start *time.Time
	// End is the inclusive upper bound, already extended to 23:59:59 of the
	// requested day so records on the end date are not excluded.
	End *time.Time
}

// ParseEnquiryFilter builds a filter from raw query-string values. The "All"
// sentinel and malformed years or dates are treated as absent filters, never
// as errors.
func ParseEnquiryFilter(search, branch, year, startDate, endDate string) EnquiryFilter {
	f := EnquiryFilter{Search: strings.TrimSpace(search)}

	if branch != "" && branch != FilterAll {
		f.Branch = branch
	}
	if year != "" && year != FilterAll {
		if y, err := strconv.Atoi(year); err == nil && y > 0 {
			f.Year = y
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", startDate, time.UTC); err == nil {
		f.Start = &t
	}
	if t, err := time.ParseInLocation("2006-01-02", endDate, time.UTC); err == nil {
		end := t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		f.End = &end
	}
	return f
}

// IsZero reports whether no filter is active.
func (f EnquiryFilter) IsZero() bool {
	return f.Search == "" && f.Branch == "" && f.Year == 0 && f.Start == nil && f.End == nil
}

// Matches is the pure in-memory predicate. It must stay logically identical
// to the SQL built by the enquiry repository: case-insensitive substring
// search over name/email/phone/queries, exact branch, calendar-year match and
// inclusive timestamp bounds.
func (f EnquiryFilter) Matches(e Enquiry) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Name), needle) &&
			!strings.Contains(strings.ToLower(e.Email), needle) &&
			!strings.Contains(strings.ToLower(e.Phone), needle) &&
			!strings.Contains(strings.ToLower(e.Queries), needle) {
			return false
		}
	}
	if f.Branch != "" && e.Branch != f.Branch {
		return false
	}
	ts := e.CreatedAt.UTC()
	if f.Year != 0 && ts.Year() != f.Year {
		return false
	}
	if f.Start != nil && ts.Before(*f.Start) {
		return false
	}
	if f.End != nil && ts.After(*f.End) {
		return false
	}
	return true
}

// FilterEnquiries returns the records matching the filter, preserving input
// order.
func FilterEnquiries(records []Enquiry, f EnquiryFilter) []Enquiry {
	out := make([]Enquiry, 0, len(records))
	for _, e := range records {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
