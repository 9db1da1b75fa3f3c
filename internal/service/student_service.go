package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// StudentService serves the student-centric read side: profile and the
// participation history held on the student document.
type StudentService struct {
	students studentStore
	logger   *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentStore, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, logger: logger}
}

// Profile returns the student document with credentials stripped.
func (s *StudentService) Profile(ctx context.Context, enrollmentNo string) (*models.Student, error) {
	student, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}
	student.PasswordHash = ""
	return student, nil
}

// ParticipationView is one row of a student's event history, annotated with
// how far along the identifier chain the participation has progressed.
type ParticipationView struct {
	EventID       string               `json:"event_id"`
	Participation models.Participation `json:"participation"`
	ChainStage    string               `json:"chain_stage"`
	ChainIntact   bool                 `json:"chain_intact"`
}

// Participations lists the student's full event history.
func (s *StudentService) Participations(ctx context.Context, enrollmentNo string) ([]ParticipationView, error) {
	student, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}

	views := make([]ParticipationView, 0, len(student.EventParticipations))
	for eventID, p := range student.EventParticipations {
		views = append(views, ParticipationView{
			EventID:       eventID,
			Participation: p,
			ChainStage:    chainStage(p),
			ChainIntact:   lifecycle.ChainIntact(p),
		})
	}
	return views, nil
}

func chainStage(p models.Participation) string {
	switch {
	case p.CertificateID != "":
		return "certificate_issued"
	case p.FeedbackID != "":
		return "feedback_submitted"
	case p.AttendanceID != "":
		return "attended"
	case p.AttendanceStatus == models.AttendanceAbsent:
		return "absent"
	default:
		return "registered"
	}
}
