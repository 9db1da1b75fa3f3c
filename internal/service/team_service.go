package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// TeamService handles roster changes on an existing team registration. All
// changes are leader-initiated and only allowed while registration is open,
// so the roster freezes at the same moment new registrations do.
type TeamService struct {
	students  studentStore
	events    eventStore
	notify    notifier
	metrics   transitionRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTeamService constructs TeamService.
func NewTeamService(students studentStore, events eventStore, notify notifier, metrics transitionRecorder, validate *validator.Validate, logger *zap.Logger) *TeamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamService{
		students:  students,
		events:    events,
		notify:    notify,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *TeamService) record(operation string, ok bool) {
	if s.metrics != nil {
		s.metrics.RecordTransition(operation, ok)
	}
}

// loadTeamContext resolves the event, verifies the caller leads the team, and
// returns both along with the roster record.
func (s *TeamService) loadTeamContext(ctx context.Context, leaderEnrollment, eventID, teamID string) (*models.Event, models.TeamRegistration, *appErrors.Error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, models.TeamRegistration{}, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, models.TeamRegistration{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
	}
	ev.Status, ev.SubStatus = lifecycle.ComputeStatus(ev, s.now().UTC())

	team, ok := ev.TeamRegistrations[teamID]
	if !ok {
		return nil, models.TeamRegistration{}, appErrors.Clone(appErrors.ErrNotFound, "team registration not found")
	}
	if team.TeamLeaderEnrollment != leaderEnrollment {
		return nil, models.TeamRegistration{}, appErrors.Clone(appErrors.ErrForbidden, "only the team leader can modify the roster")
	}
	return ev, team, nil
}

// AddParticipant adds one student to an existing team while registration is
// open and the team stays within its maximum size.
func (s *TeamService) AddParticipant(ctx context.Context, leaderEnrollment, eventID, teamID, enrollmentNo string) (Outcome, error) {
	if !models.ValidEnrollmentNo(enrollmentNo) {
		return rejected(appErrors.ErrValidation.Code, "invalid enrollment number format"), nil
	}

	ev, team, appErr := s.loadTeamContext(ctx, leaderEnrollment, eventID, teamID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	if ev.SubStatus != models.SubStatusRegistrationOpen {
		s.record("team_add", false)
		return rejected(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("roster changes are only allowed while registration is open (current phase: %s)", ev.SubStatus)), nil
	}
	_, maxSize := ev.TeamBounds()
	if team.Size()+1 > maxSize {
		s.record("team_add", false)
		return rejected(appErrors.ErrCapacityViolation.Code,
			fmt.Sprintf("team is at its maximum size of %d members", maxSize)), nil
	}
	if ev.AtCapacity(1) {
		s.record("team_add", false)
		return rejected(appErrors.ErrCapacityViolation.Code, "event has reached its participant limit"), nil
	}

	student, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			s.record("team_add", false)
			return rejected(appErrors.ErrNotFound.Code, fmt.Sprintf("student %s not found", enrollmentNo)), nil
		}
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}
	if _, registered := student.Participation(eventID); registered {
		s.record("team_add", false)
		return rejected(appErrors.ErrConflict.Code,
			fmt.Sprintf("%s is already registered for this event", enrollmentNo)), nil
	}

	now := s.now().UTC()
	registrationID := lifecycle.NewRegistrationID(enrollmentNo, eventID, teamID, now)
	participation := models.Participation{
		RegistrationID:     registrationID,
		RegistrationType:   models.RegistrationTeamParticipant,
		TeamRegistrationID: teamID,
		RegisteredAt:       now,
		PaymentStatus:      initialPaymentStatus(ev),
		StudentData:        models.SnapshotOf(student, team.TeamName),
	}
	if err := s.students.SetParticipation(ctx, enrollmentNo, eventID, participation); err != nil {
		s.record("team_add", false)
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to add team member")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}
	if err := s.events.SetRegistration(ctx, eventID, registrationID, enrollmentNo); err != nil {
		s.logger.Sugar().Errorw("event index write failed after student write; reconciler will repair",
			"event_id", eventID, "enrollment_no", enrollmentNo, "registration_id", registrationID, "error", err)
	}
	if err := s.events.AddTeamParticipant(ctx, eventID, teamID, enrollmentNo); err != nil {
		s.logger.Sugar().Errorw("team roster update failed after member write; reconciler will repair",
			"event_id", eventID, "team_registration_id", teamID, "enrollment_no", enrollmentNo, "error", err)
	}

	s.record("team_add", true)
	if s.notify != nil {
		s.notify.RegistrationConfirmed(student.Email, student.FullName, ev, registrationID)
	}
	s.logger.Sugar().Infow("team member added",
		"event_id", eventID, "team_registration_id", teamID, "enrollment_no", enrollmentNo)
	return granted(registrationID, fmt.Sprintf("%s added to team %q", enrollmentNo, team.TeamName)), nil
}

// RemoveParticipant removes one member from the roster, keeping the team at
// or above the event's minimum size. The leader cannot remove themselves;
// dissolving the team goes through cancellation instead.
func (s *TeamService) RemoveParticipant(ctx context.Context, leaderEnrollment, eventID, teamID, enrollmentNo string) (Outcome, error) {
	ev, team, appErr := s.loadTeamContext(ctx, leaderEnrollment, eventID, teamID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	if ev.SubStatus != models.SubStatusRegistrationOpen {
		s.record("team_remove", false)
		return rejected(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("roster changes are only allowed while registration is open (current phase: %s)", ev.SubStatus)), nil
	}
	if enrollmentNo == team.TeamLeaderEnrollment {
		s.record("team_remove", false)
		return rejected(appErrors.ErrValidation.Code, "the team leader cannot be removed; cancel the team registration instead"), nil
	}

	isMember := false
	for _, member := range team.Participants {
		if member == enrollmentNo {
			isMember = true
			break
		}
	}
	if !isMember {
		s.record("team_remove", false)
		return rejected(appErrors.ErrNotFound.Code,
			fmt.Sprintf("%s is not a member of this team", enrollmentNo)), nil
	}

	minSize, _ := ev.TeamBounds()
	if team.Size()-1 < minSize {
		s.record("team_remove", false)
		return rejected(appErrors.ErrCapacityViolation.Code,
			fmt.Sprintf("removing would shrink the team below the minimum of %d members", minSize)), nil
	}

	member, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil && !errors.Is(err, store.ErrNoDocument) {
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}

	registrationID := ""
	if member != nil {
		if p, ok := member.Participation(eventID); ok {
			registrationID = p.RegistrationID
		}
		if err := s.students.RemoveParticipation(ctx, enrollmentNo, eventID); err != nil {
			s.record("team_remove", false)
			wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to remove team member")
			return rejected(wrapped.Code, wrapped.Message), wrapped
		}
	}
	if registrationID != "" {
		if err := s.events.UnsetRegistration(ctx, eventID, registrationID); err != nil {
			s.logger.Sugar().Errorw("event index cleanup failed after student write; reconciler will repair",
				"event_id", eventID, "registration_id", registrationID, "error", err)
		}
	}
	if err := s.events.PullTeamParticipant(ctx, eventID, teamID, enrollmentNo); err != nil {
		s.logger.Sugar().Errorw("team roster update failed after member removal; reconciler will repair",
			"event_id", eventID, "team_registration_id", teamID, "enrollment_no", enrollmentNo, "error", err)
	}

	s.record("team_remove", true)
	s.logger.Sugar().Infow("team member removed",
		"event_id", eventID, "team_registration_id", teamID, "enrollment_no", enrollmentNo)
	return granted(registrationID, fmt.Sprintf("%s removed from team %q", enrollmentNo, team.TeamName)), nil
}

// UpdateContactRequest carries the snapshot contact fields a leader may edit.
type UpdateContactRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	MobileNo string `json:"mobile_no"`
}

// UpdateParticipantContact patches the contact details frozen in a member's
// registration snapshot. The profile document itself is untouched; only the
// copy carried by this event's participation changes.
func (s *TeamService) UpdateParticipantContact(ctx context.Context, leaderEnrollment, eventID, teamID, enrollmentNo string, req UpdateContactRequest) (Outcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return rejected(appErrors.ErrValidation.Code, "invalid contact payload"), nil
	}
	if req.Email == "" && req.MobileNo == "" {
		return rejected(appErrors.ErrValidation.Code, "nothing to update"), nil
	}

	ev, team, appErr := s.loadTeamContext(ctx, leaderEnrollment, eventID, teamID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	if ev.SubStatus != models.SubStatusRegistrationOpen {
		s.record("team_update", false)
		return rejected(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("roster changes are only allowed while registration is open (current phase: %s)", ev.SubStatus)), nil
	}

	onRoster := enrollmentNo == team.TeamLeaderEnrollment
	for _, member := range team.Participants {
		if member == enrollmentNo {
			onRoster = true
			break
		}
	}
	if !onRoster {
		s.record("team_update", false)
		return rejected(appErrors.ErrNotFound.Code,
			fmt.Sprintf("%s is not a member of this team", enrollmentNo)), nil
	}

	fields := map[string]interface{}{}
	if req.Email != "" {
		fields["student_data.email"] = req.Email
	}
	if req.MobileNo != "" {
		fields["student_data.mobile_no"] = req.MobileNo
	}
	if err := s.students.SetParticipationFields(ctx, enrollmentNo, eventID, fields); err != nil {
		s.record("team_update", false)
		wrapped := appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update contact details")
		return rejected(wrapped.Code, wrapped.Message), wrapped
	}

	s.record("team_update", true)
	s.logger.Sugar().Infow("team member contact updated",
		"event_id", eventID, "team_registration_id", teamID, "enrollment_no", enrollmentNo)
	return granted("", fmt.Sprintf("contact details updated for %s", enrollmentNo)), nil
}
