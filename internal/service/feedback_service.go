package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// FeedbackService handles the feedback step of the chain. Feedback opens once
// the event ends and certificates become available, and requires a recorded
// present attendance.
type FeedbackService struct {
	students  studentStore
	events    eventStore
	notify    notifier
	metrics   transitionRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeedbackService constructs FeedbackService.
func NewFeedbackService(students studentStore, events eventStore, notify notifier, metrics transitionRecorder, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		students:  students,
		events:    events,
		notify:    notify,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *FeedbackService) record(ok bool) {
	if s.metrics != nil {
		s.metrics.RecordTransition("submit_feedback", ok)
	}
}

// SubmitFeedbackRequest is the feedback payload.
type SubmitFeedbackRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comments string `json:"comments" validate:"max=2000"`
}

// Submit records feedback for an attended event and mints the feedback_id
// that unlocks the certificate step.
func (s *FeedbackService) Submit(ctx context.Context, enrollmentNo, eventID string, req SubmitFeedbackRequest) (Outcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return rejected(appErrors.ErrValidation.Code, "rating must be between 1 and 5"), nil
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
	if check := lifecycle.CanSubmitFeedback(ev, p); !check.OK {
		s.record(false)
		if check.Code == appErrors.ErrAlreadyCompleted.Code {
			return rejectedWithID(check.Code, p.FeedbackID, check.Reason), nil
		}
		return fromCheck(check), nil
	}

	now := s.now().UTC()
	feedbackID := lifecycle.NewFeedbackID(enrollmentNo, eventID, now)

	if err := s.students.SetParticipationFields(ctx, enrollmentNo, eventID, map[string]interface{}{
		"feedback_id": feedbackID,
	}); err != nil {
		s.record(false)
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record feedback")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}

	mirror := models.FeedbackRecord{
		EnrollmentNo: enrollmentNo,
		Rating:       req.Rating,
		Comments:     req.Comments,
		SubmittedAt:  now,
	}
	if err := s.events.SetFeedback(ctx, eventID, feedbackID, mirror); err != nil {
		s.logger.Sugar().Errorw("event index write failed after student write; reconciler will repair",
			"event_id", eventID, "enrollment_no", enrollmentNo, "feedback_id", feedbackID, "error", err)
	}

	s.record(true)
	if s.notify != nil {
		s.notify.FeedbackReceived(student.Email, student.FullName, ev, feedbackID)
	}
	s.logger.Sugar().Infow("feedback recorded",
		"event_id", eventID, "enrollment_no", enrollmentNo, "feedback_id", feedbackID, "rating", req.Rating)
	return granted(feedbackID, "feedback submitted"), nil
}
