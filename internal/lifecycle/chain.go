package lifecycle

import (
	"fmt"

	"github.com/campushq/events-api/internal/models"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// Check is the outcome of a pure lifecycle predicate. When the operation is
// not allowed, Code carries the rejection taxonomy code and Reason a
// user-facing explanation.
type Check struct {
	OK     bool
	Code   string
	Reason string
}

func allow() Check {
	return Check{OK: true}
}

func deny(code, reason string) Check {
	return Check{Code: code, Reason: reason}
}

// CanRegister validates a new registration against the event phase and the
// student's existing participation. An existing participation is reported as
// ALREADY_COMPLETED; callers treat it as a benign idempotent read.
func CanRegister(ev *models.Event, student *models.Student) Check {
	if _, ok := student.Participation(ev.EventID); ok {
		return deny(appErrors.ErrAlreadyCompleted.Code, "already registered for this event")
	}
	if ev.SubStatus != models.SubStatusRegistrationOpen {
		return deny(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("registration is not open (current phase: %s)", ev.SubStatus))
	}
	return allow()
}

// CanMarkAttendance validates marking a student present. A repeat call is a
// benign, reportable condition rather than an error.
func CanMarkAttendance(ev *models.Event, p models.Participation) Check {
	if p.RegistrationID == "" {
		return deny(appErrors.ErrNotRegistered.Code, "no registration found for this event")
	}
	if p.AttendanceID != "" {
		return deny(appErrors.ErrAlreadyCompleted.Code, "attendance already marked")
	}
	if ev.SubStatus != models.SubStatusEventStarted {
		return deny(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("attendance can only be marked while the event is running (current phase: %s)", ev.SubStatus))
	}
	return allow()
}

// CanSubmitFeedback validates feedback submission. The three rejection
// reasons (not registered, did not attend, already submitted) stay distinct
// because they are user-facing.
func CanSubmitFeedback(ev *models.Event, p models.Participation) Check {
	if p.RegistrationID == "" {
		return deny(appErrors.ErrNotRegistered.Code, "no registration found for this event")
	}
	if p.AttendanceID == "" {
		return deny(appErrors.ErrPrerequisiteMissing.Code, "student did not attend the event")
	}
	if p.FeedbackID != "" {
		return deny(appErrors.ErrAlreadyCompleted.Code, "feedback already submitted")
	}
	if ev.SubStatus != models.SubStatusCertificateAvailable {
		return deny(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("feedback opens after the event ends (current phase: %s)", ev.SubStatus))
	}
	return allow()
}

// CanIssueCertificate validates certificate issuance against the chain and
// the event's eligibility combination.
func CanIssueCertificate(ev *models.Event, p models.Participation) Check {
	if p.RegistrationID == "" {
		return deny(appErrors.ErrNotRegistered.Code, "no registration found for this event")
	}
	if p.AttendanceID == "" {
		return deny(appErrors.ErrPrerequisiteMissing.Code, "student did not attend the event")
	}
	if p.FeedbackID == "" {
		return deny(appErrors.ErrPrerequisiteMissing.Code, "feedback must be submitted before the certificate")
	}
	if p.CertificateID != "" {
		return deny(appErrors.ErrAlreadyCompleted.Code, "certificate already issued")
	}
	if !CertificateSupported(ev.RegistrationMode, ev.RegistrationType) {
		return deny(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("certificates are not supported for %s/%s events", ev.RegistrationMode, ev.RegistrationType))
	}
	return allow()
}

// CanCancel validates a cancellation request by registration role.
// Participant self-cancellation is rejected unless the deployment enables
// self-leave; the restrictive policy is the default.
func CanCancel(ev *models.Event, p models.Participation, allowSelfLeave bool) Check {
	if p.RegistrationID == "" {
		return deny(appErrors.ErrNotRegistered.Code, "no registration found for this event")
	}
	if ev.SubStatus != models.SubStatusRegistrationOpen {
		return deny(appErrors.ErrPhaseClosed.Code,
			fmt.Sprintf("registrations can only be cancelled while registration is open (current phase: %s)", ev.SubStatus))
	}
	if p.RegistrationType == models.RegistrationTeamParticipant && !allowSelfLeave {
		return deny(appErrors.ErrForbidden.Code, "team participants cannot cancel; contact your team leader")
	}
	return allow()
}

// certificateEligibility is the policy matrix deciding which event
// combinations support certificate generation. Kept as one table so the
// policy stays auditable in a single place.
var certificateEligibility = map[models.RegistrationMode]map[models.FeeType]bool{
	models.ModeIndividual: {models.FeeFree: true, models.FeePaid: true},
	models.ModeTeam:       {models.FeeFree: true, models.FeePaid: true},
}

// CertificateSupported reports whether the (mode, fee type) combination is
// covered by certificate generation.
func CertificateSupported(mode models.RegistrationMode, fee models.FeeType) bool {
	return certificateEligibility[mode][fee]
}

// ChainIntact verifies the identifier chain invariant on a participation:
// certificate requires feedback, feedback requires attendance, attendance
// requires registration.
func ChainIntact(p models.Participation) bool {
	if p.CertificateID != "" && p.FeedbackID == "" {
		return false
	}
	if p.FeedbackID != "" && p.AttendanceID == "" {
		return false
	}
	if p.AttendanceID != "" && p.RegistrationID == "" {
		return false
	}
	return true
}
