package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/pkg/config"
	"github.com/ace-portal/enquiry-api/pkg/jobs"
	"github.com/ace-portal/enquiry-api/pkg/mail"
)

type mockNotificationStore struct {
	rows      map[string]*models.Notification
	createErr error
	sent      []string
	failed    []string
	dead      []string
}

func newMockNotificationStore() *mockNotificationStore {
	return &mockNotificationStore{rows: make(map[string]*models.Notification)}
}

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	if n.ID == "" {
		n.ID = "n1"
	}
	n.Status = models.NotificationStatusPending
	m.rows[n.ID] = n
	return nil
}

func (m *mockNotificationStore) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	n, ok := m.rows[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *n
	return &copied, nil
}

func (m *mockNotificationStore) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	m.sent = append(m.sent, id)
	m.rows[id].Status = models.NotificationStatusSent
	return nil
}

func (m *mockNotificationStore) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	m.failed = append(m.failed, id)
	m.rows[id].Status = models.NotificationStatusFailed
	m.rows[id].Attempts = attempts
	return nil
}

func (m *mockNotificationStore) MarkDead(ctx context.Context, id string, attempts int, lastError string) error {
	m.dead = append(m.dead, id)
	if n, ok := m.rows[id]; ok {
		n.Status = models.NotificationStatusDead
	}
	return nil
}

func (m *mockNotificationStore) ListUndelivered(ctx context.Context, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.rows {
		if n.Status == models.NotificationStatusPending || n.Status == models.NotificationStatusFailed {
			out = append(out, *n)
		}
	}
	return out, nil
}

type mockEnquiryFinder struct {
	enquiry *models.Enquiry
}

func (m *mockEnquiryFinder) FindByID(ctx context.Context, id string) (*models.Enquiry, error) {
	if m.enquiry == nil {
		return nil, errors.New("not found")
	}
	return m.enquiry, nil
}

type mockMailer struct {
	sent    []mail.Message
	sendErr error
}

func (m *mockMailer) Send(msg mail.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) Verify() error { return nil }

type mockQueue struct {
	jobs       []jobs.Job
	enqueueErr error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockSink struct {
	files map[string][]byte
}

func (m *mockSink) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = data
	return "/dead/" + filename, nil
}

func testEnquiry() *models.Enquiry {
	return &models.Enquiry{
		ID:        "e1",
		Name:      "Riya Sharma",
		Email:     "riya@example.com",
		Phone:     "9876543210",
		Course:    "B.E.",
		Branch:    "Computer Science & Engineering",
		CreatedAt: time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
	}
}

func newTestNotificationService(store *mockNotificationStore, finder *mockEnquiryFinder, mailer *mockMailer, sink *mockSink) (*NotificationService, *mockQueue) {
	cfg := config.SMTPConfig{To: "admissions@example.edu", CC: "office@example.edu, dean@example.edu"}
	svc := NewNotificationService(store, finder, mailer, sink, nil, cfg, nil)
	queue := &mockQueue{}
	svc.AttachQueue(queue)
	return svc, queue
}

func TestNotificationServiceDispatchEnqueues(t *testing.T) {
	store := newMockNotificationStore()
	svc, queue := newTestNotificationService(store, &mockEnquiryFinder{enquiry: testEnquiry()}, &mockMailer{}, nil)

	svc.Dispatch(context.Background(), *testEnquiry())

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, jobTypeEnquiryMail, queue.jobs[0].Type)
	n, ok := store.rows[queue.jobs[0].ID]
	require.True(t, ok)
	assert.Equal(t, "e1", n.EnquiryID)
	assert.Equal(t, models.NotificationStatusPending, n.Status)
}

func TestNotificationServiceDeliverSendsMail(t *testing.T) {
	store := newMockNotificationStore()
	mailer := &mockMailer{}
	svc, queue := newTestNotificationService(store, &mockEnquiryFinder{enquiry: testEnquiry()}, mailer, nil)

	svc.Dispatch(context.Background(), *testEnquiry())
	require.Len(t, queue.jobs, 1)

	err := svc.Deliver(context.Background(), queue.jobs[0])
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "New Admission Enquiry: Riya Sharma", msg.Subject)
	assert.Equal(t, []string{"admissions@example.edu"}, msg.To)
	assert.Equal(t, []string{"office@example.edu", "dean@example.edu"}, msg.CC)
	assert.Contains(t, msg.HTML, "Riya Sharma")
	assert.Contains(t, msg.HTML, "Computer Science &amp; Engineering")
	// Empty queries render as N/A, matching the intake form contract.
	assert.Contains(t, msg.HTML, "N/A")
	assert.Equal(t, []string{"n1"}, store.sent)
}

func TestNotificationServiceDeliverFailureMarksRow(t *testing.T) {
	store := newMockNotificationStore()
	mailer := &mockMailer{sendErr: errors.New("smtp unavailable")}
	svc, queue := newTestNotificationService(store, &mockEnquiryFinder{enquiry: testEnquiry()}, mailer, nil)

	svc.Dispatch(context.Background(), *testEnquiry())
	err := svc.Deliver(context.Background(), queue.jobs[0])
	require.Error(t, err)
	assert.Equal(t, []string{"n1"}, store.failed)
	assert.Empty(t, store.sent)
}

func TestNotificationServiceDeliverSkipsSettledRows(t *testing.T) {
	store := newMockNotificationStore()
	mailer := &mockMailer{}
	svc, _ := newTestNotificationService(store, &mockEnquiryFinder{enquiry: testEnquiry()}, mailer, nil)

	store.rows["n9"] = &models.Notification{ID: "n9", EnquiryID: "e1", Status: models.NotificationStatusSent}
	err := svc.Deliver(context.Background(), jobs.Job{ID: "n9", Type: jobTypeEnquiryMail})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestNotificationServiceExhaustedDeadLetters(t *testing.T) {
	store := newMockNotificationStore()
	sink := &mockSink{}
	svc, queue := newTestNotificationService(store, &mockEnquiryFinder{enquiry: testEnquiry()}, &mockMailer{}, sink)

	svc.Dispatch(context.Background(), *testEnquiry())
	job := queue.jobs[0]
	job.Attempt = 3

	svc.Exhausted(context.Background(), job, errors.New("smtp unavailable"))

	assert.Equal(t, []string{"n1"}, store.dead)
	data, ok := sink.files["notification_n1.json"]
	require.True(t, ok)
	assert.Contains(t, string(data), "smtp unavailable")
	assert.Contains(t, string(data), "e1")
}

func TestNotificationServiceRecoverUndelivered(t *testing.T) {
	store := newMockNotificationStore()
	svc, queue := newTestNotificationService(store, &mockEnquiryFinder{enquiry: testEnquiry()}, &mockMailer{}, nil)

	store.rows["n1"] = &models.Notification{ID: "n1", EnquiryID: "e1", Status: models.NotificationStatusPending}
	store.rows["n2"] = &models.Notification{ID: "n2", EnquiryID: "e2", Status: models.NotificationStatusFailed}
	store.rows["n3"] = &models.Notification{ID: "n3", EnquiryID: "e3", Status: models.NotificationStatusSent}

	require.NoError(t, svc.RecoverUndelivered(context.Background(), 100))
	assert.Len(t, queue.jobs, 2)
}
