package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// RegistrationService runs the registration and cancellation transitions of
// the participation lifecycle. All writes follow the dual-document protocol:
// the student document (authoritative) first, then the event document
// (rebuildable index), so a crash between the two leaves a state the
// reconciler can repair from the student side.
type RegistrationService struct {
	students       studentStore
	events         eventStore
	notify         notifier
	metrics        transitionRecorder
	allowSelfLeave bool
	validator      *validator.Validate
	logger         *zap.Logger
	now            func() time.Time
}

// NewRegistrationService constructs RegistrationService. The notifier and
// recorder may be nil.
func NewRegistrationService(students studentStore, events eventStore, notify notifier, metrics transitionRecorder, allowSelfLeave bool, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		students:       students,
		events:         events,
		notify:         notify,
		metrics:        metrics,
		allowSelfLeave: allowSelfLeave,
		validator:      validate,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *RegistrationService) record(operation string, ok bool) {
	if s.metrics != nil {
		s.metrics.RecordTransition(operation, ok)
	}
}

// loadEvent fetches an event and refreshes its derived status in memory.
// Gating decisions always run against the freshly computed phase.
func (s *RegistrationService) loadEvent(ctx context.Context, eventID string) (*models.Event, *appErrors.Error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
	}
	ev.Status, ev.SubStatus = lifecycle.ComputeStatus(ev, s.now().UTC())
	return ev, nil
}

func (s *RegistrationService) loadStudent(ctx context.Context, enrollmentNo string) (*models.Student, *appErrors.Error) {
	student, err := s.students.FindByEnrollment(ctx, enrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", enrollmentNo))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}
	return student, nil
}

func initialPaymentStatus(ev *models.Event) models.PaymentStatus {
	if ev.RegistrationType == models.FeePaid {
		return models.PaymentPending
	}
	return ""
}

// RegisterIndividual registers one student for an individual event. The call
// is idempotent: a repeat registration returns the originally minted
// registration_id as a success rather than an error.
func (s *RegistrationService) RegisterIndividual(ctx context.Context, enrollmentNo, eventID string) (Outcome, error) {
	if !models.ValidEnrollmentNo(enrollmentNo) {
		return rejected(appErrors.ErrValidation.Code, "invalid enrollment number format"), nil
	}

	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	if ev.RegistrationMode != models.ModeIndividual {
		return rejected(appErrors.ErrValidation.Code, "this event requires team registration"), nil
	}

	student, appErr := s.loadStudent(ctx, enrollmentNo)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}

	if existing, ok := student.Participation(eventID); ok {
		s.record("register", true)
		return granted(existing.RegistrationID, "existing registration"), nil
	}

	if check := lifecycle.CanRegister(ev, student); !check.OK {
		s.record("register", false)
		return fromCheck(check), nil
	}
	if ev.AtCapacity(1) {
		s.record("register", false)
		return rejected(appErrors.ErrCapacityViolation.Code, "event has reached its participant limit"), nil
	}

	now := s.now().UTC()
	registrationID := lifecycle.NewRegistrationID(enrollmentNo, eventID, "", now)

	participation := models.Participation{
		RegistrationID:   registrationID,
		RegistrationType: models.RegistrationIndividual,
		RegisteredAt:     now,
		PaymentStatus:    initialPaymentStatus(ev),
		StudentData:      models.SnapshotOf(student, ""),
	}

	// Student document first: it is the source of truth the reconciler
	// rebuilds the event index from.
	if err := s.students.SetParticipation(ctx, enrollmentNo, eventID, participation); err != nil {
		s.record("register", false)
		return rejected(appErrors.ErrStoreUnavailable.Code, "failed to record registration"),
			appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record registration")
	}
	if err := s.events.SetRegistration(ctx, eventID, registrationID, enrollmentNo); err != nil {
		s.logger.Sugar().Errorw("event index write failed after student write; reconciler will repair",
			"event_id", eventID, "enrollment_no", enrollmentNo, "registration_id", registrationID, "error", err)
	}

	s.record("register", true)
	if s.notify != nil {
		s.notify.RegistrationConfirmed(student.Email, student.FullName, ev, registrationID)
	}
	s.logger.Sugar().Infow("registration recorded",
		"event_id", eventID, "enrollment_no", enrollmentNo, "registration_id", registrationID)
	return granted(registrationID, "registration successful"), nil
}

// TeamRegisterRequest is the payload for registering a whole team in one call.
type TeamRegisterRequest struct {
	EventID          string   `json:"event_id" validate:"required"`
	LeaderEnrollment string   `json:"leader_enrollment" validate:"required"`
	TeamName         string   `json:"team_name" validate:"required"`
	Participants     []string `json:"participants"`
}

// RegisterTeam registers a leader plus participants atomically from the
// caller's point of view: validation reports every missing student and every
// member already registered in one response, and no document is written until
// the whole roster validates. The team roster record is written before any
// member participation so a partial failure always leaves a recovery anchor.
func (s *RegistrationService) RegisterTeam(ctx context.Context, req TeamRegisterRequest) (Outcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return rejected(appErrors.ErrValidation.Code, "invalid team registration payload"), nil
	}

	ev, appErr := s.loadEvent(ctx, req.EventID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	if ev.RegistrationMode != models.ModeTeam {
		return rejected(appErrors.ErrValidation.Code, "this event only accepts individual registration"), nil
	}
	if ev.SubStatus != models.SubStatusRegistrationOpen {
		s.record("register_team", false)
		return rejected(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("registration is not open (current phase: %s)", ev.SubStatus)), nil
	}

	roster := dedupeRoster(req.LeaderEnrollment, req.Participants)
	for _, enrollment := range roster {
		if !models.ValidEnrollmentNo(enrollment) {
			return rejected(appErrors.ErrValidation.Code,
				fmt.Sprintf("invalid enrollment number format: %s", enrollment)), nil
		}
	}

	minSize, maxSize := ev.TeamBounds()
	if len(roster) < minSize || len(roster) > maxSize {
		s.record("register_team", false)
		return rejected(appErrors.ErrCapacityViolation.Code,
			fmt.Sprintf("team size must be between %d and %d members (got %d)", minSize, maxSize, len(roster))), nil
	}
	if ev.AtCapacity(len(roster)) {
		s.record("register_team", false)
		return rejected(appErrors.ErrCapacityViolation.Code, "event has reached its participant limit"), nil
	}

	// Validate the full roster before writing anything, so the caller gets
	// every problem in one pass instead of one rejection per attempt.
	students := make(map[string]*models.Student, len(roster))
	var missing, conflicting []string
	for _, enrollment := range roster {
		student, err := s.students.FindByEnrollment(ctx, enrollment)
		if err != nil {
			if errors.Is(err, store.ErrNoDocument) {
				missing = append(missing, enrollment)
				continue
			}
			return rejected(appErrors.ErrStoreUnavailable.Code, "failed to load team members"),
				appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load team members")
		}
		if _, registered := student.Participation(req.EventID); registered {
			conflicting = append(conflicting, enrollment)
			continue
		}
		students[enrollment] = student
	}
	if len(missing) > 0 {
		s.record("register_team", false)
		return rejected(appErrors.ErrNotFound.Code,
			"the following team members do not exist: "+strings.Join(missing, ", ")), nil
	}
	if len(conflicting) > 0 {
		s.record("register_team", false)
		return rejected(appErrors.ErrConflict.Code,
			"the following team members are already registered for this event: "+strings.Join(conflicting, ", ")), nil
	}

	now := s.now().UTC()
	teamID := lifecycle.NewTeamRegistrationID(req.LeaderEnrollment, req.EventID, req.TeamName, now)

	participants := roster[1:]
	team := models.TeamRegistration{
		TeamName:             req.TeamName,
		TeamLeaderEnrollment: req.LeaderEnrollment,
		Participants:         append([]string{}, participants...),
		RegistrationDate:     now,
	}
	// Roster record first: if member writes fail part way, the reconciler
	// can still see the intended team shape.
	if err := s.events.SetTeamRegistration(ctx, req.EventID, teamID, team); err != nil {
		s.record("register_team", false)
		return rejected(appErrors.ErrStoreUnavailable.Code, "failed to record team registration"),
			appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record team registration")
	}

	paymentStatus := initialPaymentStatus(ev)
	for i, enrollment := range roster {
		role := models.RegistrationTeamParticipant
		if i == 0 {
			role = models.RegistrationTeamLeader
		}
		student := students[enrollment]
		registrationID := lifecycle.NewRegistrationID(enrollment, req.EventID, teamID, now)
		participation := models.Participation{
			RegistrationID:     registrationID,
			RegistrationType:   role,
			TeamRegistrationID: teamID,
			RegisteredAt:       now,
			PaymentStatus:      paymentStatus,
			StudentData:        models.SnapshotOf(student, req.TeamName),
		}
		if err := s.students.SetParticipation(ctx, enrollment, req.EventID, participation); err != nil {
			s.record("register_team", false)
			s.logger.Sugar().Errorw("team registration interrupted mid-roster; reconciler will repair",
				"event_id", req.EventID, "team_registration_id", teamID, "enrollment_no", enrollment, "error", err)
			return rejected(appErrors.ErrStoreUnavailable.Code, "failed to record team registration"),
				appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record team member")
		}
		if err := s.events.SetRegistration(ctx, req.EventID, registrationID, enrollment); err != nil {
			s.logger.Sugar().Errorw("event index write failed after student write; reconciler will repair",
				"event_id", req.EventID, "enrollment_no", enrollment, "registration_id", registrationID, "error", err)
		}
		if s.notify != nil {
			s.notify.RegistrationConfirmed(student.Email, student.FullName, ev, registrationID)
		}
	}

	s.record("register_team", true)
	s.logger.Sugar().Infow("team registration recorded",
		"event_id", req.EventID, "team_registration_id", teamID, "team_size", len(roster))
	return granted(teamID, fmt.Sprintf("team %q registered with %d members", req.TeamName, len(roster))), nil
}

// Cancel removes a registration during the open-registration window. The
// effect depends on the caller's role: individuals remove themselves, a team
// leader dissolves the whole team, and a team participant may only leave when
// self-leave is enabled and the team stays above its minimum size.
func (s *RegistrationService) Cancel(ctx context.Context, enrollmentNo, eventID string) (Outcome, error) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	student, appErr := s.loadStudent(ctx, enrollmentNo)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	p, ok := student.Participation(eventID)
	if !ok {
		s.record("cancel", false)
		return rejected(appErrors.ErrNotRegistered.Code, "no registration found for this event"), nil
	}
	if check := lifecycle.CanCancel(ev, p, s.allowSelfLeave); !check.OK {
		s.record("cancel", false)
		return fromCheck(check), nil
	}

	switch p.RegistrationType {
	case models.RegistrationTeamLeader:
		return s.cancelTeam(ctx, ev, p.TeamRegistrationID)
	case models.RegistrationTeamParticipant:
		return s.cancelParticipant(ctx, ev, enrollmentNo, p)
	default:
		if err := s.removeMember(ctx, eventID, enrollmentNo, p.RegistrationID); err != nil {
			s.record("cancel", false)
			return rejected(appErrors.ErrStoreUnavailable.Code, "failed to cancel registration"), err
		}
		s.record("cancel", true)
		s.logger.Sugar().Infow("registration cancelled", "event_id", eventID, "enrollment_no", enrollmentNo)
		return granted(p.RegistrationID, "registration cancelled"), nil
	}
}

// cancelTeam dissolves the team: every member's participation is removed
// before the roster record, so an interrupted cascade leaves the roster as
// the reconciliation anchor rather than orphaned member registrations.
func (s *RegistrationService) cancelTeam(ctx context.Context, ev *models.Event, teamID string) (Outcome, error) {
	team, ok := ev.TeamRegistrations[teamID]
	if !ok {
		s.record("cancel", false)
		return rejected(appErrors.ErrNotFound.Code, "team registration record not found"), nil
	}

	for _, enrollment := range team.Members() {
		member, appErr := s.loadStudent(ctx, enrollment)
		if appErr != nil {
			if appErr.Code == appErrors.ErrNotFound.Code {
				continue
			}
			s.record("cancel", false)
			return rejected(appErr.Code, "failed to cancel team registration"), appErr
		}
		mp, ok := member.Participation(ev.EventID)
		if !ok {
			continue
		}
		if err := s.removeMember(ctx, ev.EventID, enrollment, mp.RegistrationID); err != nil {
			s.record("cancel", false)
			return rejected(appErrors.ErrStoreUnavailable.Code, "failed to cancel team registration"), err
		}
	}

	if err := s.events.RemoveTeamRegistration(ctx, ev.EventID, teamID); err != nil {
		s.record("cancel", false)
		return rejected(appErrors.ErrStoreUnavailable.Code, "failed to remove team record"),
			appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to remove team record")
	}

	s.record("cancel", true)
	s.logger.Sugar().Infow("team registration cancelled",
		"event_id", ev.EventID, "team_registration_id", teamID, "team_size", team.Size())
	return granted(teamID, fmt.Sprintf("team %q cancelled (%d members removed)", team.TeamName, team.Size())), nil
}

// cancelParticipant handles an enabled self-leave: the member leaves the team
// roster without dissolving it, as long as the team stays at or above the
// event's minimum size.
func (s *RegistrationService) cancelParticipant(ctx context.Context, ev *models.Event, enrollmentNo string, p models.Participation) (Outcome, error) {
	team, ok := ev.TeamRegistrations[p.TeamRegistrationID]
	if ok {
		minSize, _ := ev.TeamBounds()
		if team.Size()-1 < minSize {
			s.record("cancel", false)
			return rejected(appErrors.ErrCapacityViolation.Code,
				fmt.Sprintf("leaving would shrink the team below the minimum of %d members", minSize)), nil
		}
	}

	if err := s.removeMember(ctx, ev.EventID, enrollmentNo, p.RegistrationID); err != nil {
		s.record("cancel", false)
		return rejected(appErrors.ErrStoreUnavailable.Code, "failed to leave team"), err
	}
	if err := s.events.PullTeamParticipant(ctx, ev.EventID, p.TeamRegistrationID, enrollmentNo); err != nil {
		s.logger.Sugar().Errorw("team roster update failed after member removal; reconciler will repair",
			"event_id", ev.EventID, "team_registration_id", p.TeamRegistrationID, "enrollment_no", enrollmentNo, "error", err)
	}

	s.record("cancel", true)
	s.logger.Sugar().Infow("team participant left",
		"event_id", ev.EventID, "team_registration_id", p.TeamRegistrationID, "enrollment_no", enrollmentNo)
	return granted(p.RegistrationID, "left the team"), nil
}

// removeMember deletes one member's registration from both documents,
// student side first.
func (s *RegistrationService) removeMember(ctx context.Context, eventID, enrollmentNo, registrationID string) error {
	if err := s.students.RemoveParticipation(ctx, enrollmentNo, eventID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to remove participation")
	}
	if err := s.events.UnsetRegistration(ctx, eventID, registrationID); err != nil {
		s.logger.Sugar().Errorw("event index cleanup failed after student write; reconciler will repair",
			"event_id", eventID, "enrollment_no", enrollmentNo, "registration_id", registrationID, "error", err)
	}
	return nil
}

// CompletePayment marks a pending payment as completed. Free events and
// already-completed payments are reported, not errored.
func (s *RegistrationService) CompletePayment(ctx context.Context, enrollmentNo, eventID string) (Outcome, error) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	student, appErr := s.loadStudent(ctx, enrollmentNo)
	if appErr != nil {
		return rejected(appErr.Code, appErr.Message), appErr
	}
	p, ok := student.Participation(eventID)
	if !ok {
		return rejected(appErrors.ErrNotRegistered.Code, "no registration found for this event"), nil
	}
	if ev.RegistrationType != models.FeePaid {
		return rejected(appErrors.ErrValidation.Code, "this event does not require payment"), nil
	}
	if p.PaymentStatus == models.PaymentCompleted {
		return rejectedWithID(appErrors.ErrAlreadyCompleted.Code, p.RegistrationID, "payment already completed"), nil
	}

	now := s.now().UTC()
	fields := map[string]interface{}{
		"payment_status":             models.PaymentCompleted,
		"payment_completed_datetime": now,
	}
	if err := s.students.SetParticipationFields(ctx, enrollmentNo, eventID, fields); err != nil {
		return rejected(appErrors.ErrStoreUnavailable.Code, "failed to record payment"),
			appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to record payment")
	}

	s.logger.Sugar().Infow("payment completed",
		"event_id", eventID, "enrollment_no", enrollmentNo, "registration_id", p.RegistrationID)
	return granted(p.RegistrationID, "payment completed"), nil
}

// dedupeRoster returns the leader followed by the unique participants, with
// the leader excluded from the participant list and order preserved.
func dedupeRoster(leader string, participants []string) []string {
	seen := map[string]bool{leader: true}
	roster := []string{leader}
	for _, enrollment := range participants {
		if seen[enrollment] {
			continue
		}
		seen[enrollment] = true
		roster = append(roster, enrollment)
	}
	return roster
}

// TeamRoster returns the roster of one team registration, participants
// sorted for stable output.
func (s *RegistrationService) TeamRoster(ctx context.Context, eventID, teamID string) (*models.TeamRegistration, error) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	team, ok := ev.TeamRegistrations[teamID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "team registration not found")
	}
	sort.Strings(team.Participants)
	return &team, nil
}
