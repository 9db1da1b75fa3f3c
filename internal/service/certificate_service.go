package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/export"
)

// CertificateService issues the final identifier of the chain and renders the
// downloadable PDF artifact. Issuance is a lifecycle transition; rendering is
// a repeatable read that requires an already issued certificate.
type CertificateService struct {
	students studentStore
	events   eventStore
	notify   notifier
	metrics  transitionRecorder
	renderer *export.CertificateRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(students studentStore, events eventStore, notify notifier, metrics transitionRecorder, renderer *export.CertificateRenderer, logger *zap.Logger) *CertificateService {
	if renderer == nil {
		renderer = export.NewCertificateRenderer("", "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		students: students,
		events:   events,
		notify:   notify,
		metrics:  metrics,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *CertificateService) record(ok bool) {
	if s.metrics != nil {
		s.metrics.RecordTransition("issue_certificate", ok)
	}
}

func (s *CertificateService) load(ctx context.Context, enrollmentNo, eventID string) (*models.Event, *models.Student, *appErrors.Error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
	}
	ev.Status, ev.SubStatus = lifecycle.ComputeStatus(ev, s.now().UTC())

	student, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}
	return ev, student, nil
}

// Issue mints the certificate_id once registration, attendance, and feedback
// are all present. A repeat call reports the existing certificate_id.
func (s *CertificateService) Issue(ctx context.Context, enrollmentNo, eventID string) (Outcome, error) {
	ev, student, appErr := s.load(ctx, enrollmentNo, eventID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}

	p, _ := student.Participation(eventID)
	if check := lifecycle.CanIssueCertificate(ev, p); !check.OK {
		s.record(false)
		if check.Code == appErrors.ErrAlreadyCompleted.Code {
			return rejectedWithID(check.Code, p.CertificateID, check.Reason), nil
		}
		return fromCheck(check), nil
	}

	now := s.now().UTC()
	certificateID := lifecycle.NewCertificateID(enrollmentNo, eventID, p.FeedbackID, now)

	if err := s.students.SetParticipationFields(ctx, enrollmentNo, eventID, map[string]interface{}{
		"certificate_id": certificateID,
	}); err != nil {
		s.record(false)
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record certificate")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}
	if err := s.events.SetCertificate(ctx, eventID, certificateID, enrollmentNo); err != nil {
		s.logger.Sugar().Errorw("event index write failed after student write; reconciler will repair",
			"event_id", eventID, "enrollment_no", enrollmentNo, "certificate_id", certificateID, "error", err)
	}

	s.record(true)
	if s.notify != nil {
		s.notify.CertificateIssued(student.Email, student.FullName, ev, certificateID)
	}
	s.logger.Sugar().Infow("certificate issued",
		"event_id", eventID, "enrollment_no", enrollmentNo, "certificate_id", certificateID)
	return granted(certificateID, "certificate issued"), nil
}

// Download renders the PDF for an already issued certificate. When no
// certificate exists yet but the chain qualifies, Issue must be called first;
// this keeps issuance auditable as its own transition.
func (s *CertificateService) Download(ctx context.Context, enrollmentNo, eventID string) ([]byte, string, error) {
	ev, student, appErr := s.load(ctx, enrollmentNo, eventID)
	if appErr != nil {
		return nil, "", appErr
	}

	p, ok := student.Participation(eventID)
	if !ok || p.CertificateID == "" {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no certificate issued for this event")
	}

	data := export.CertificateData{
		CertificateID: p.CertificateID,
		EventName:     ev.EventName,
		EventDate:     ev.StartDate,
		StudentName:   p.StudentData.FullName,
		EnrollmentNo:  enrollmentNo,
		Department:    p.StudentData.Department,
		TeamName:      p.StudentData.TeamName,
	}
	pdf, err := s.renderer.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	return pdf, p.CertificateID, nil
}
