package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/pkg/config"
	"github.com/ace-portal/enquiry-api/pkg/jobs"
	"github.com/ace-portal/enquiry-api/pkg/mail"
)

const jobTypeEnquiryMail = "enquiry_mail"

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int, lastError string) error
	MarkDead(ctx context.Context, id string, attempts int, lastError string) error
	ListUndelivered(ctx context.Context, limit int) ([]models.Notification, error)
}

type enquiryFinder interface {
	FindByID(ctx context.Context, id string) (*models.Enquiry, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type deadLetterSink interface {
	Save(filename string, data []byte) (string, error)
}

// NotificationService runs the enquiry mail pipeline. Every submitted
// enquiry gets a persisted notification row first; delivery happens on the
// background queue and retries until the row is marked SENT or DEAD.
type NotificationService struct {
	store      notificationStore
	enquiries  enquiryFinder
	mailer     mail.Mailer
	deadLetter deadLetterSink
	metrics    *MetricsService
	cfg        config.SMTPConfig
	logger     *zap.Logger

	queue jobDispatcher
}

// NewNotificationService constructs the notification service. The queue is
// attached separately because its handler is a method on this service.
func NewNotificationService(store notificationStore, enquiries enquiryFinder, mailer mail.Mailer, deadLetter deadLetterSink, metrics *MetricsService, cfg config.SMTPConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		store:      store,
		enquiries:  enquiries,
		mailer:     mailer,
		deadLetter: deadLetter,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
	}
}

// AttachQueue wires the delivery queue. Must be called before Dispatch.
func (s *NotificationService) AttachQueue(q jobDispatcher) {
	s.queue = q
}

// Dispatch records a notification for the enquiry and schedules delivery.
// Failures here are logged only; the enquiry itself is already stored and
// RecoverUndelivered will pick up any row that never reached the queue.
func (s *NotificationService) Dispatch(ctx context.Context, enquiry models.Enquiry) {
	n := &models.Notification{EnquiryID: enquiry.ID}
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.Sugar().Errorw("failed to record notification", "enquiry_id", enquiry.ID, "error", err)
		return
	}
	s.enqueue(n.ID)
}

func (s *NotificationService) enqueue(notificationID string) {
	if s.queue == nil {
		s.logger.Sugar().Errorw("notification queue not attached", "notification_id", notificationID)
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: notificationID, Type: jobTypeEnquiryMail}); err != nil {
		s.logger.Sugar().Errorw("failed to enqueue notification", "notification_id", notificationID, "error", err)
	}
}

// Deliver is the queue handler. A returned error triggers the queue's
// retry cycle; the stored row tracks each attempt.
func (s *NotificationService) Deliver(ctx context.Context, job jobs.Job) error {
	n, err := s.store.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", job.ID, err)
	}
	if n.Status == models.NotificationStatusSent || n.Status == models.NotificationStatusDead {
		return nil
	}

	enquiry, err := s.enquiries.FindByID(ctx, n.EnquiryID)
	if err != nil {
		return fmt.Errorf("load enquiry %s: %w", n.EnquiryID, err)
	}

	if err := s.mailer.Send(s.compose(*enquiry)); err != nil {
		if markErr := s.store.MarkFailed(ctx, n.ID, job.Attempt+1, err.Error()); markErr != nil {
			s.logger.Sugar().Errorw("failed to mark notification failed", "notification_id", n.ID, "error", markErr)
		}
		if s.metrics != nil {
			s.metrics.NotificationFailed()
		}
		return err
	}

	if err := s.store.MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
		s.logger.Sugar().Errorw("mail sent but status update failed", "notification_id", n.ID, "error", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationSent()
	}
	s.logger.Sugar().Infow("enquiry notification sent", "notification_id", n.ID, "enquiry_id", n.EnquiryID)
	return nil
}

// Exhausted runs after the final retry. The row is marked DEAD and the
// payload is written to the dead-letter directory for manual replay.
func (s *NotificationService) Exhausted(ctx context.Context, job jobs.Job, cause error) {
	if err := s.store.MarkDead(ctx, job.ID, job.Attempt, cause.Error()); err != nil {
		s.logger.Sugar().Errorw("failed to mark notification dead", "notification_id", job.ID, "error", err)
	}
	if s.deadLetter == nil {
		return
	}

	record := map[string]interface{}{
		"notification_id": job.ID,
		"attempts":        job.Attempt,
		"error":           cause.Error(),
		"failed_at":       time.Now().UTC().Format(time.RFC3339),
	}
	if n, err := s.store.GetByID(ctx, job.ID); err == nil {
		record["enquiry_id"] = n.EnquiryID
		if enquiry, err := s.enquiries.FindByID(ctx, n.EnquiryID); err == nil {
			record["enquiry"] = enquiry
		}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		s.logger.Sugar().Errorw("failed to encode dead letter", "notification_id", job.ID, "error", err)
		return
	}
	path, err := s.deadLetter.Save(fmt.Sprintf("notification_%s.json", job.ID), data)
	if err != nil {
		s.logger.Sugar().Errorw("failed to write dead letter", "notification_id", job.ID, "error", err)
		return
	}
	s.logger.Sugar().Warnw("notification dead-lettered", "notification_id", job.ID, "path", path)
}

// RecoverUndelivered re-enqueues PENDING and FAILED rows. Called once at
// startup so restarts never lose queued mail.
func (s *NotificationService) RecoverUndelivered(ctx context.Context, limit int) error {
	pending, err := s.store.ListUndelivered(ctx, limit)
	if err != nil {
		return fmt.Errorf("list undelivered notifications: %w", err)
	}
	for _, n := range pending {
		s.enqueue(n.ID)
	}
	if len(pending) > 0 {
		s.logger.Sugar().Infow("requeued undelivered notifications", "count", len(pending))
	}
	return nil
}

func (s *NotificationService) compose(enquiry models.Enquiry) mail.Message {
	queries := enquiry.Queries
	if queries == "" {
		queries = "N/A"
	}

	rows := [][2]string{
		{"Name", enquiry.Name},
		{"Email", enquiry.Email},
		{"Phone", enquiry.Phone},
		{"Course", enquiry.Course},
		{"Branch", enquiry.Branch},
		{"Queries", queries},
		{"Submitted At", enquiry.CreatedAt.UTC().Format("02 Jan 2006 15:04 MST")},
	}

	var body string
	body += "<h2>New Admission Enquiry Received</h2>"
	body += `<table border="1" cellpadding="8" cellspacing="0" style="border-collapse:collapse">`
	for _, row := range rows {
		body += fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", row[0], html.EscapeString(row[1]))
	}
	body += "</table>"

	return mail.Message{
		To:      recipients(s.cfg.To),
		CC:      recipients(s.cfg.CC),
		BCC:     recipients(s.cfg.BCC),
		Subject: fmt.Sprintf("New Admission Enquiry: %s", enquiry.Name),
		HTML:    body,
	}
}

func recipients(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
