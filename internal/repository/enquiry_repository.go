package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ace-portal/enquiry-api/internal/models"
)

// EnquiryRepository manages persistence for enquiry records.
type EnquiryRepository struct {
	db *sqlx.DB
}

// NewEnquiryRepository constructs an EnquiryRepository.
func NewEnquiryRepository(db *sqlx.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

// Create inserts a new enquiry, assigning its ID and creation timestamp.
func (r *EnquiryRepository) Create(ctx context.Context, enquiry *models.Enquiry) error {
	if enquiry.ID == "" {
		enquiry.ID = uuid.NewString()
	}
	if enquiry.CreatedAt.IsZero() {
		enquiry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enquiries (id, name, email, phone, course, branch, queries, created_at)
        VALUES (:id, :name, :email, :phone, :course, :branch, :queries, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enquiry); err != nil {
		return fmt.Errorf("create enquiry: %w", err)
	}
	return nil
}

// FindByID fetches a single enquiry.
func (r *EnquiryRepository) FindByID(ctx context.Context, id string) (*models.Enquiry, error) {
	const query = `SELECT id, name, email, phone, course, branch, queries, created_at FROM enquiries WHERE id = $1`
	var enquiry models.Enquiry
	if err := r.db.GetContext(ctx, &enquiry, query, id); err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// List returns enquiries matching the filter, newest first. Predicate clauses
// and their bound values are accumulated in lockstep; filter input never
// reaches the query text itself.
func (r *EnquiryRepository) List(ctx context.Context, filter models.EnquiryFilter) ([]models.Enquiry, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(name) LIKE $%d ESCAPE '\\' OR LOWER(email) LIKE $%d ESCAPE '\\' OR LOWER(phone) LIKE $%d ESCAPE '\\' OR LOWER(queries) LIKE $%d ESCAPE '\\')",
			idx, idx, idx, idx))
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Search))+"%")
	}
	if filter.Branch != "" {
		conditions = append(conditions, fmt.Sprintf("branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM created_at) = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Start != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		// End is already extended to 23:59:59 of the requested day.
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, *filter.End)
	}

	query := fmt.Sprintf(
		"SELECT id, name, email, phone, course, branch, queries, created_at FROM enquiries WHERE %s ORDER BY created_at DESC",
		strings.Join(conditions, " AND "))

	var enquiries []models.Enquiry
	if err := r.db.SelectContext(ctx, &enquiries, query, args...); err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return enquiries, nil
}

// escapeLike neutralizes LIKE metacharacters so a search term is matched
// literally, keeping the query aligned with the in-memory predicate.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountAll returns the total number of stored enquiries.
func (r *EnquiryRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enquiries"); err != nil {
		return 0, fmt.Errorf("count enquiries: %w", err)
	}
	return total, nil
}

// CountByBranch groups enquiry counts per branch.
func (r *EnquiryRepository) CountByBranch(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT branch, COUNT(*) FROM enquiries GROUP BY branch")
	if err != nil {
		return nil, fmt.Errorf("count by branch: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[string]int)
	for rows.Next() {
		var branch string
		var count int
		if err := rows.Scan(&branch, &count); err != nil {
			return nil, fmt.Errorf("scan branch count: %w", err)
		}
		counts[branch] = count
	}
	return counts, rows.Err()
}

// CountByYear groups enquiry counts per calendar year of creation.
func (r *EnquiryRepository) CountByYear(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT EXTRACT(YEAR FROM created_at)::int AS year, COUNT(*) FROM enquiries GROUP BY year")
	if err != nil {
		return nil, fmt.Errorf("count by year: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[int]int)
	for rows.Next() {
		var year, count int
		if err := rows.Scan(&year, &count); err != nil {
			return nil, fmt.Errorf("scan year count: %w", err)
		}
		counts[year] = count
	}
	return counts, rows.Err()
}
