package service

import (
	"context"
	"time"

	"github.com/campushq/events-api/internal/models"
)

// studentStore is the student-side persistence surface consumed by the
// lifecycle services. The student document is the authoritative view.
type studentStore interface {
	FindByEnrollment(ctx context.Context, enrollmentNo string) (*models.Student, error)
	All(ctx context.Context) ([]models.Student, error)
	SetParticipation(ctx context.Context, enrollmentNo, eventID string, p models.Participation) error
	SetParticipationFields(ctx context.Context, enrollmentNo, eventID string, fields map[string]interface{}) error
	RemoveParticipation(ctx context.Context, enrollmentNo, eventID string) error
	UpdateLastLogin(ctx context.Context, enrollmentNo string, ts time.Time) error
}

// eventStore is the event-side persistence surface. Everything written here
// is a rebuildable projection of the student documents.
type eventStore interface {
	FindByID(ctx context.Context, eventID string) (*models.Event, error)
	All(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	SetRegistration(ctx context.Context, eventID, registrationID, enrollmentNo string) error
	UnsetRegistration(ctx context.Context, eventID, registrationID string) error
	SetTeamRegistration(ctx context.Context, eventID, teamRegistrationID string, team models.TeamRegistration) error
	RemoveTeamRegistration(ctx context.Context, eventID, teamRegistrationID string) error
	AddTeamParticipant(ctx context.Context, eventID, teamRegistrationID, enrollmentNo string) error
	PullTeamParticipant(ctx context.Context, eventID, teamRegistrationID, enrollmentNo string) error
	SetAttendance(ctx context.Context, eventID, attendanceID string, record models.AttendanceRecord) error
	SetFeedback(ctx context.Context, eventID, feedbackID string, record models.FeedbackRecord) error
	SetCertificate(ctx context.Context, eventID, certificateID, enrollmentNo string) error
	ReplaceIndexes(ctx context.Context, eventID string, registrations map[string]string, teams map[string]models.TeamRegistration) error
	SetDerivedStatus(ctx context.Context, eventID string, status models.EventStatus, subStatus models.EventSubStatus) error
}

// notifier delivers post-transition emails. Calls are fire-and-forget: the
// lifecycle engine never inspects the result and a failed notification never
// rolls back a completed transition.
type notifier interface {
	RegistrationConfirmed(to, name string, event *models.Event, registrationID string)
	AttendanceConfirmed(to, name string, event *models.Event, attendanceID string)
	FeedbackReceived(to, name string, event *models.Event, feedbackID string)
	CertificateIssued(to, name string, event *models.Event, certificateID string)
}

// transitionRecorder counts lifecycle transitions for observability.
type transitionRecorder interface {
	RecordTransition(operation string, ok bool)
}
