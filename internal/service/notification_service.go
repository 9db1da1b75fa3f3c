package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/pkg/config"
	"github.com/campushq/events-api/pkg/jobs"
	"github.com/campushq/events-api/pkg/mailer"
)

// NotificationService delivers lifecycle emails through a background worker
// queue. Every send is fire-and-forget: enqueue failures and delivery
// failures are logged, never surfaced to the lifecycle engine.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mailer.Mailer
	logger *zap.Logger
}

type emailJob struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// NewNotificationService constructs the notification pipeline.
func NewNotificationService(m mailer.Mailer, cfg config.NotifyConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{mailer: m, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		s.logger.Sugar().Errorw("unexpected notification payload", "job_id", job.ID)
		return nil
	}
	return s.mailer.Send(ctx, payload.To, payload.Subject, payload.HTML, payload.Text)
}

func (s *NotificationService) enqueue(kind string, payload emailJob) {
	if payload.To == "" {
		return
	}
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: kind, Payload: payload})
	if err != nil {
		s.logger.Sugar().Warnw("failed to enqueue notification", "type", kind, "error", err)
	}
}

// RegistrationConfirmed emails a registration confirmation.
func (s *NotificationService) RegistrationConfirmed(to, name string, event *models.Event, registrationID string) {
	s.enqueue("registration_confirmation", emailJob{
		To:      to,
		Subject: fmt.Sprintf("Registration confirmed: %s", event.EventName),
		Text: fmt.Sprintf("Hi %s,\n\nYour registration for %s is confirmed.\nRegistration ID: %s\nEvent date: %s %s\n\nSee you there!",
			name, event.EventName, registrationID, event.StartDate, event.StartTime),
	})
}

// AttendanceConfirmed emails an attendance acknowledgement.
func (s *NotificationService) AttendanceConfirmed(to, name string, event *models.Event, attendanceID string) {
	s.enqueue("attendance_confirmation", emailJob{
		To:      to,
		Subject: fmt.Sprintf("Attendance recorded: %s", event.EventName),
		Text: fmt.Sprintf("Hi %s,\n\nYour attendance at %s has been recorded.\nAttendance ID: %s",
			name, event.EventName, attendanceID),
	})
}

// FeedbackReceived emails a feedback acknowledgement.
func (s *NotificationService) FeedbackReceived(to, name string, event *models.Event, feedbackID string) {
	s.enqueue("feedback_confirmation", emailJob{
		To:      to,
		Subject: fmt.Sprintf("Thanks for your feedback: %s", event.EventName),
		Text: fmt.Sprintf("Hi %s,\n\nThanks for sharing feedback on %s.\nFeedback ID: %s\nYour certificate is now available for download.",
			name, event.EventName, feedbackID),
	})
}

// CertificateIssued emails a certificate availability notice.
func (s *NotificationService) CertificateIssued(to, name string, event *models.Event, certificateID string) {
	s.enqueue("certificate_notification", emailJob{
		To:      to,
		Subject: fmt.Sprintf("Your certificate is ready: %s", event.EventName),
		Text: fmt.Sprintf("Hi %s,\n\nYour participation certificate for %s has been issued.\nCertificate ID: %s",
			name, event.EventName, certificateID),
	})
}
