package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ace-portal/enquiry-api/internal/models"
	appErrors "github.com/ace-portal/enquiry-api/pkg/errors"
	"github.com/ace-portal/enquiry-api/pkg/export"
)

// Export formats accepted by the report endpoint.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatCSV  = "csv"
)

const exportSheetName = "Enquiries"

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the filtered enquiry view as a downloadable report.
// Each export fetches a fresh snapshot into the dashboard session and
// narrows it with the in-memory filter, so the file always contains exactly
// the rows the dashboard shows under the same filter.
type ExportService struct {
	repo    enquiryRepository
	session *DashboardSession
	xlsx    *export.XLSXExporter
	pdf     *export.PDFExporter
	csv     *export.CSVExporter
	metrics *MetricsService
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(repo enquiryRepository, session *DashboardSession, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if session == nil {
		session = NewDashboardSession()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		session: session,
		xlsx:    export.NewXLSXExporter(),
		pdf:     export.NewPDFExporter(),
		csv:     export.NewCSVExporter(),
		metrics: metrics,
		logger:  logger,
	}
}

// Export renders the current filtered view in the requested format.
func (s *ExportService) Export(ctx context.Context, format string, filter models.EnquiryFilter) (*ExportFile, error) {
	view, err := s.refresh(ctx, filter)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	date := time.Now().UTC().Format("2006-01-02")

	var file *ExportFile
	switch format {
	case FormatXLSX:
		data, err := s.xlsx.Render(s.dataset(view, true), exportSheetName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx report")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("Enquiries_%s.xlsx", date),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	case FormatPDF:
		subtitle := fmt.Sprintf("Generated on: %s", date)
		data, err := s.pdf.Render(s.dataset(view, false), "Admission Enquiries Report", subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("Enquiries_%s.pdf", date),
			ContentType: "application/pdf",
			Data:        data,
		}
	case FormatCSV:
		data, err := s.csv.Render(s.dataset(view, true))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("Enquiries_%s.csv", date),
			ContentType: "text/csv",
			Data:        data,
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	s.metrics.ObserveExport(format, time.Since(started))
	s.logger.Sugar().Infow("report exported", "format", format, "rows", len(view), "filename", file.Filename)
	return file, nil
}

// refresh pulls the full record set into the session under a fresh sequence
// number, installs the filter and returns the derived view. The view is
// computed from the locally fetched snapshot so a concurrent export changing
// the session filter cannot leak into this request's rows.
func (s *ExportService) refresh(ctx context.Context, filter models.EnquiryFilter) ([]models.Enquiry, error) {
	seq := s.session.NextSeq()
	records, err := s.repo.List(ctx, models.EnquiryFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enquiries for export")
	}
	s.session.ApplySnapshot(seq, records)
	s.session.SetFilter(filter)
	return models.FilterEnquiries(records, filter), nil
}

// dataset lays out the view as tabular rows. Spreadsheet formats carry the
// record id as the first column; the PDF leaves it out for readability.
func (s *ExportService) dataset(records []models.Enquiry, withID bool) export.Dataset {
	headers := []string{"Date", "Name", "Phone", "Email", "Course", "Branch", "Queries"}
	if withID {
		headers = []string{"ID", "Date", "Name", "Email", "Phone", "Course", "Branch", "Queries"}
	}

	rows := make([]map[string]string, 0, len(records))
	for _, e := range records {
		row := map[string]string{
			"Date":    e.CreatedAt.UTC().Format("2006-01-02"),
			"Name":    e.Name,
			"Email":   e.Email,
			"Phone":   e.Phone,
			"Course":  e.Course,
			"Branch":  e.Branch,
			"Queries": e.Queries,
		}
		if withID {
			row["ID"] = e.ID
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
