package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ace-portal/enquiry-api/internal/dto"
	"github.com/ace-portal/enquiry-api/internal/models"
	appErrors "github.com/ace-portal/enquiry-api/pkg/errors"
)

type enquiryRepository interface {
	Create(ctx context.Context, enquiry *models.Enquiry) error
	FindByID(ctx context.Context, id string) (*models.Enquiry, error)
	List(ctx context.Context, filter models.EnquiryFilter) ([]models.Enquiry, error)
}

type enquiryNotifier interface {
	Dispatch(ctx context.Context, enquiry models.Enquiry)
}

// EnquiryService handles intake and listing use-cases.
type EnquiryService struct {
	repo      enquiryRepository
	notifier  enquiryNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnquiryService constructs the enquiry service.
func NewEnquiryService(repo enquiryRepository, notifier enquiryNotifier, validate *validator.Validate, logger *zap.Logger) *EnquiryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnquiryService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// Submit validates and persists a new enquiry, then hands it to the
// notification pipeline. Persistence decides the response; notification
// dispatch is fire-and-forget and cannot fail the submission.
func (s *EnquiryService) Submit(ctx context.Context, req dto.EnquiryRequest) (*models.Enquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enquiry payload")
	}
	if !models.ValidCourse(req.Course) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course")
	}
	if !models.ValidCourseBranch(req.Course, req.Branch) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "branch is not offered under the selected course")
	}

	enquiry := &models.Enquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Course:  req.Course,
		Branch:  req.Branch,
		Queries: req.Queries,
	}
	if err := s.repo.Create(ctx, enquiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store enquiry")
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, *enquiry)
	}

	return enquiry, nil
}

// Get returns a single enquiry for the detail view.
func (s *EnquiryService) Get(ctx context.Context, id string) (*models.Enquiry, error) {
	enquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enquiry")
	}
	return enquiry, nil
}

// List returns the filtered record set, newest first. The result is never
// nil so the endpoint always serialises to a JSON array.
func (s *EnquiryService) List(ctx context.Context, filter models.EnquiryFilter) ([]models.Enquiry, error) {
	enquiries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enquiries")
	}
	if enquiries == nil {
		enquiries = []models.Enquiry{}
	}
	return enquiries, nil
}
