package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ace-portal/enquiry-api/internal/models"
)

// NotificationRepository manages the email outbox table.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a pending outbox row.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, enquiry_id, status, attempts, last_error, created_at, sent_at)
        VALUES (:id, :enquiry_id, :status, :attempts, :last_error, :created_at, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// GetByID fetches a single outbox row.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, enquiry_id, status, attempts, last_error, created_at, sent_at FROM notifications WHERE id = $1`
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkSent records successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	const query = `UPDATE notifications SET status = $2, sent_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.NotificationStatusSent, sentAt); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure that will be retried.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	const query = `UPDATE notifications SET status = $2, attempts = $3, last_error = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.NotificationStatusFailed, attempts, lastError); err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// MarkDead records a delivery that exhausted all retries.
func (r *NotificationRepository) MarkDead(ctx context.Context, id string, attempts int, lastError string) error {
	const query = `UPDATE notifications SET status = $2, attempts = $3, last_error = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.NotificationStatusDead, attempts, lastError); err != nil {
		return fmt.Errorf("mark notification dead: %w", err)
	}
	return nil
}

// ListUndelivered returns rows still awaiting delivery, oldest first. Used to
// re-enqueue the outbox after a restart.
func (r *NotificationRepository) ListUndelivered(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, enquiry_id, status, attempts, last_error, created_at, sent_at FROM notifications
        WHERE status IN ($1, $2) ORDER BY created_at ASC LIMIT $3`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query,
		models.NotificationStatusPending, models.NotificationStatusFailed, limit); err != nil {
		return nil, fmt.Errorf("list undelivered notifications: %w", err)
	}
	return notifications, nil
}
