package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ace-portal/enquiry-api/internal/models"
)

func newEnquiryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnquiryRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnquiryMock(t)
	defer cleanup()
	repo := NewEnquiryRepository(db)

	mock.ExpectExec("INSERT INTO enquiries").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enquiry := &models.Enquiry{Name: "Riya Sharma", Email: "riya@example.com", Phone: "9876543210", Course: "B.E.", Branch: "Computer Science & Engineering", Queries: "Hostel availability"}
	err := repo.Create(context.Background(), enquiry)
	require.NoError(t, err)
	assert.NotEmpty(t, enquiry.ID)
	assert.False(t, enquiry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnquiryRepositoryListNoFilter(t *testing.T) {
	db, mock, cleanup := newEnquiryMock(t)
	defer cleanup()
	repo := NewEnquiryRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "course", "branch", "queries", "created_at"}).
		AddRow("e1", "Riya Sharma", "riya@example.com", "9876543210", "B.E.", "Computer Science & Engineering", "", now).
		AddRow("e2", "Aman Verma", "aman@example.com", "9123456780", "MBA", "MBA (Full Time)", "Fee structure", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, course, branch, queries, created_at FROM enquiries WHERE 1=1 ORDER BY created_at DESC")).
		WillReturnRows(rows)

	enquiries, err := repo.List(context.Background(), models.EnquiryFilter{})
	require.NoError(t, err)
	assert.Len(t, enquiries, 2)
	assert.Equal(t, "e1", enquiries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnquiryRepositoryListAllFilters(t *testing.T) {
	db, mock, cleanup := newEnquiryMock(t)
	defer cleanup()
	repo := NewEnquiryRepository(db)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	filter := models.EnquiryFilter{
		Search: "Riya",
		Branch: "Computer Science & Engineering",
		Year:   2025,
		Start:  &start,
		End:    &end,
	}

	query := "SELECT id, name, email, phone, course, branch, queries, created_at FROM enquiries " +
		"WHERE 1=1 AND (LOWER(name) LIKE $1 ESCAPE '\\' OR LOWER(email) LIKE $1 ESCAPE '\\' OR LOWER(phone) LIKE $1 ESCAPE '\\' OR LOWER(queries) LIKE $1 ESCAPE '\\') " +
		"AND branch = $2 AND EXTRACT(YEAR FROM created_at) = $3 AND created_at >= $4 AND created_at <= $5 " +
		"ORDER BY created_at DESC"

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "course", "branch", "queries", "created_at"}).
		AddRow("e1", "Riya Sharma", "riya@example.com", "9876543210", "B.E.", "Computer Science & Engineering", "", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("%riya%", "Computer Science & Engineering", 2025, start, end).
		WillReturnRows(rows)

	enquiries, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, enquiries, 1)
	assert.Equal(t, "Riya Sharma", enquiries[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnquiryRepositoryListEscapesSearchWildcards(t *testing.T) {
	db, mock, cleanup := newEnquiryMock(t)
	defer cleanup()
	repo := NewEnquiryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "course", "branch", "queries", "created_at"})
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(name) LIKE $1 ESCAPE '\\'")).
		WithArgs(`%100\% sure\_thing%`).
		WillReturnRows(rows)

	_, err := repo.List(context.Background(), models.EnquiryFilter{Search: "100% sure_thing"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnquiryRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newEnquiryMock(t)
	defer cleanup()
	repo := NewEnquiryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "course", "branch", "queries", "created_at"}).
		AddRow("e1", "Riya Sharma", "riya@example.com", "9876543210", "B.E.", "Computer Science & Engineering", "", time.Now().UTC())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, course, branch, queries, created_at FROM enquiries WHERE id = $1")).
		WithArgs("e1").
		WillReturnRows(rows)

	enquiry, err := repo.FindByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "riya@example.com", enquiry.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnquiryRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newEnquiryMock(t)
	defer cleanup()
	repo := NewEnquiryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT branch, COUNT(*) FROM enquiries GROUP BY branch")).
		WillReturnRows(sqlmock.NewRows([]string{"branch", "count"}).
			AddRow("Computer Science & Engineering", 3).
			AddRow("MBA (Full Time)", 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXTRACT(YEAR FROM created_at)::int AS year, COUNT(*) FROM enquiries GROUP BY year")).
		WillReturnRows(sqlmock.NewRows([]string{"year", "count"}).
			AddRow(2024, 2).
			AddRow(2025, 3))

	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	byBranch, err := repo.CountByBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Computer Science & Engineering": 3, "MBA (Full Time)": 2}, byBranch)

	byYear, err := repo.CountByYear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2024: 2, 2025: 3}, byYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}
