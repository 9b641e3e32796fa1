package models

import "time"

// NotificationStatus captures the outbox lifecycle states.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
	// NotificationStatusDead marks messages that exhausted every retry and
	// were written to the dead-letter directory.
	NotificationStatusDead NotificationStatus = "DEAD"
)

// Notification is a persisted outbox row for one enquiry's email. Intake
// writes it PENDING inside the request; delivery happens afterwards on the
// worker queue and never affects the submission response.
type Notification struct {
	ID        string             `db:"id" json:"id"`
	EnquiryID string             `db:"enquiry_id" json:"enquiry_id"`
	Status    NotificationStatus `db:"status" json:"status"`
	Attempts  int                `db:"attempts" json:"attempts"`
	LastError *string            `db:"last_error" json:"last_error,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	SentAt    *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}
