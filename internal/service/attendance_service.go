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
)

// AttendanceService marks attendance during the event window. Marking present
// extends the identifier chain; marking absent records the status without
// minting an attendance_id, which permanently blocks the feedback and
// certificate steps for that participation.
type AttendanceService struct {
	students studentStore
	events   eventStore
	notify   notifier
	metrics  transitionRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(students studentStore, events eventStore, notify notifier, metrics transitionRecorder, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		students: students,
		events:   events,
		notify:   notify,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AttendanceService) record(ok bool) {
	if s.metrics != nil {
		s.metrics.RecordTransition("mark_attendance", ok)
	}
}

// Mark records a student's attendance. A duplicate mark is reported with the
// originally minted attendance_id so scanners retrying a badge swipe see a
// stable answer.
func (s *AttendanceService) Mark(ctx context.Context, enrollmentNo, eventID string, status models.AttendanceStatus) (Outcome, error) {
	if status != models.AttendancePresent && status != models.AttendanceAbsent {
		return rejected(appErrors.ErrValidation.Code, "attendance status must be present or absent"), nil
	}

	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return rejected(appErrors.ErrNotFound.Code, "event not found"), appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}
	ev.Status, ev.SubStatus = lifecycle.ComputeStatus(ev, s.now().UTC())

	student, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return rejected(appErrors.ErrNotFound.Code, "student not found"), appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}

	p, _ := student.Participation(eventID)
	if check := lifecycle.CanMarkAttendance(ev, p); !check.OK {
		s.record(false)
		if check.Code == appErrors.ErrAlreadyCompleted.Code {
			return rejectedWithID(check.Code, p.AttendanceID, check.Reason), nil
		}
		return fromCheck(check), nil
	}

	now := s.now().UTC()
	fields := map[string]interface{}{
		"attendance_status":    status,
		"attendance_marked_at": now,
	}

	var attendanceID string
	if status == models.AttendancePresent {
		attendanceID = lifecycle.NewAttendanceID(enrollmentNo, eventID, string(status), now)
		fields["attendance_id"] = attendanceID
	}

	if err := s.students.SetParticipationFields(ctx, enrollmentNo, eventID, fields); err != nil {
		s.record(false)
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record attendance")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}

	if attendanceID != "" {
		mirror := models.AttendanceRecord{
			EnrollmentNo: enrollmentNo,
			FullName:     student.FullName,
			MarkedAt:     now,
			Status:       status,
		}
		if err := s.events.SetAttendance(ctx, eventID, attendanceID, mirror); err != nil {
			s.logger.Sugar().Errorw("event index write failed after student write; reconciler will repair",
				"event_id", eventID, "enrollment_no", enrollmentNo, "attendance_id", attendanceID, "error", err)
		}
	}

	s.record(true)
	s.logger.Sugar().Infow("attendance recorded",
		"event_id", eventID, "enrollment_no", enrollmentNo, "status", status, "attendance_id", attendanceID)

	if status == models.AttendanceAbsent {
		return granted("", "attendance recorded as absent"), nil
	}
	if s.notify != nil {
		s.notify.AttendanceConfirmed(student.Email, student.FullName, ev, attendanceID)
	}
	return granted(attendanceID, "attendance recorded"), nil
}
