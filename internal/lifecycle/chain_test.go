package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/events-api/internal/models"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

func eventInPhase(subStatus models.EventSubStatus) *models.Event {
	return &models.Event{EventID: "EV1", SubStatus: subStatus}
}

func TestCanRegister(t *testing.T) {
	open := eventInPhase(models.SubStatusRegistrationOpen)

	check := CanRegister(open, &models.Student{EnrollmentNo: "22BEIT30043"})
	assert.True(t, check.OK)

	registered := &models.Student{
		EnrollmentNo: "22BEIT30043",
		EventParticipations: map[string]models.Participation{
			"EV1": {RegistrationID: "REG_X"},
		},
	}
	check = CanRegister(open, registered)
	assert.False(t, check.OK)
	assert.Equal(t, appErrors.ErrAlreadyCompleted.Code, check.Code)

	closed := eventInPhase(models.SubStatusRegistrationClosed)
	check = CanRegister(closed, &models.Student{EnrollmentNo: "22BEIT30043"})
	assert.False(t, check.OK)
	assert.Equal(t, appErrors.ErrPhaseClosed.Code, check.Code)
}

func TestCanMarkAttendance(t *testing.T) {
	running := eventInPhase(models.SubStatusEventStarted)

	check := CanMarkAttendance(running, models.Participation{RegistrationID: "REG_X"})
	assert.True(t, check.OK)

	check = CanMarkAttendance(running, models.Participation{})
	assert.Equal(t, appErrors.ErrNotRegistered.Code, check.Code)

	check = CanMarkAttendance(running, models.Participation{RegistrationID: "REG_X", AttendanceID: "ATT_X"})
	assert.Equal(t, appErrors.ErrAlreadyCompleted.Code, check.Code)

	check = CanMarkAttendance(eventInPhase(models.SubStatusRegistrationOpen), models.Participation{RegistrationID: "REG_X"})
	assert.Equal(t, appErrors.ErrPhaseClosed.Code, check.Code)
}

func TestCanSubmitFeedback(t *testing.T) {
	certWindow := eventInPhase(models.SubStatusCertificateAvailable)

	check := CanSubmitFeedback(certWindow, models.Participation{RegistrationID: "REG_X", AttendanceID: "ATT_X"})
	assert.True(t, check.OK)

	check = CanSubmitFeedback(certWindow, models.Participation{})
	assert.Equal(t, appErrors.ErrNotRegistered.Code, check.Code)

	check = CanSubmitFeedback(certWindow, models.Participation{RegistrationID: "REG_X"})
	assert.Equal(t, appErrors.ErrPrerequisiteMissing.Code, check.Code)
	assert.Equal(t, "student did not attend the event", check.Reason)

	check = CanSubmitFeedback(certWindow, models.Participation{RegistrationID: "REG_X", AttendanceID: "ATT_X", FeedbackID: "FBK_X"})
	assert.Equal(t, appErrors.ErrAlreadyCompleted.Code, check.Code)

	check = CanSubmitFeedback(eventInPhase(models.SubStatusEventStarted), models.Participation{RegistrationID: "REG_X", AttendanceID: "ATT_X"})
	assert.Equal(t, appErrors.ErrPhaseClosed.Code, check.Code)
}

func TestCanIssueCertificate(t *testing.T) {
	ev := eventInPhase(models.SubStatusCertificateAvailable)
	ev.RegistrationMode = models.ModeIndividual
	ev.RegistrationType = models.FeeFree

	full := models.Participation{RegistrationID: "REG_X", AttendanceID: "ATT_X", FeedbackID: "FBK_X"}
	assert.True(t, CanIssueCertificate(ev, full).OK)

	check := CanIssueCertificate(ev, models.Participation{RegistrationID: "REG_X", AttendanceID: "ATT_X"})
	assert.Equal(t, appErrors.ErrPrerequisiteMissing.Code, check.Code)

	check = CanIssueCertificate(ev, models.Participation{RegistrationID: "REG_X"})
	assert.Equal(t, appErrors.ErrPrerequisiteMissing.Code, check.Code)
	assert.Equal(t, "student did not attend the event", check.Reason)

	issued := full
	issued.CertificateID = "CERT_X"
	check = CanIssueCertificate(ev, issued)
	assert.Equal(t, appErrors.ErrAlreadyCompleted.Code, check.Code)
}

func TestCertificateEligibilityMatrix(t *testing.T) {
	// Every mode/fee combination supports certificates.
	for _, mode := range []models.RegistrationMode{models.ModeIndividual, models.ModeTeam} {
		for _, fee := range []models.FeeType{models.FeeFree, models.FeePaid} {
			assert.True(t, CertificateSupported(mode, fee), "%s/%s", mode, fee)
		}
	}
	assert.False(t, CertificateSupported("unknown", models.FeeFree))
}

func TestCanCancel(t *testing.T) {
	open := eventInPhase(models.SubStatusRegistrationOpen)

	individual := models.Participation{RegistrationID: "REG_X", RegistrationType: models.RegistrationIndividual}
	assert.True(t, CanCancel(open, individual, false).OK)

	leader := models.Participation{RegistrationID: "REG_X", RegistrationType: models.RegistrationTeamLeader}
	assert.True(t, CanCancel(open, leader, false).OK)

	participant := models.Participation{RegistrationID: "REG_X", RegistrationType: models.RegistrationTeamParticipant}
	check := CanCancel(open, participant, false)
	assert.Equal(t, appErrors.ErrForbidden.Code, check.Code)
	assert.Equal(t, "team participants cannot cancel; contact your team leader", check.Reason)

	assert.True(t, CanCancel(open, participant, true).OK)

	check = CanCancel(eventInPhase(models.SubStatusEventStarted), individual, false)
	assert.Equal(t, appErrors.ErrPhaseClosed.Code, check.Code)
}

func TestChainIntact(t *testing.T) {
	assert.True(t, ChainIntact(models.Participation{}))
	assert.True(t, ChainIntact(models.Participation{RegistrationID: "R", AttendanceID: "A", FeedbackID: "F", CertificateID: "C"}))

	assert.False(t, ChainIntact(models.Participation{AttendanceID: "A"}))
	assert.False(t, ChainIntact(models.Participation{RegistrationID: "R", FeedbackID: "F"}))
	assert.False(t, ChainIntact(models.Participation{RegistrationID: "R", AttendanceID: "A", CertificateID: "C"}))
}
