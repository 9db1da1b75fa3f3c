package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/events-api/internal/models"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

func teamMember(enrollmentNo, name, eventID, teamID string, role models.RegistrationType) *models.Student {
	s := activeStudent(enrollmentNo, name)
	s.EventParticipations[eventID] = models.Participation{
		RegistrationID:     "REG_" + enrollmentNo,
		RegistrationType:   role,
		TeamRegistrationID: teamID,
		RegisteredAt:       testNow.AddDate(0, 0, -5),
		StudentData:        models.SnapshotOf(s, "Bit Benders"),
	}
	return s
}

func seededTeamFixture(t *testing.T) (*TeamService, *fakeStudentStore, *fakeEventStore) {
	t.Helper()

	ev := teamEvent("EV1")
	ev.TeamRegistrations["TEAM_1"] = models.TeamRegistration{
		TeamName:             "Bit Benders",
		TeamLeaderEnrollment: "22BEIT30043",
		Participants:         []string{"22BEIT30044", "22BEIT30045"},
		RegistrationDate:     testNow.AddDate(0, 0, -5),
	}
	ev.Registrations = map[string]string{
		"REG_22BEIT30043": "22BEIT30043",
		"REG_22BEIT30044": "22BEIT30044",
		"REG_22BEIT30045": "22BEIT30045",
	}

	students := newFakeStudentStore(
		teamMember("22BEIT30043", "Asha Patel", "EV1", "TEAM_1", models.RegistrationTeamLeader),
		teamMember("22BEIT30044", "Dev Shah", "EV1", "TEAM_1", models.RegistrationTeamParticipant),
		teamMember("22BEIT30045", "Kiran Rao", "EV1", "TEAM_1", models.RegistrationTeamParticipant),
		activeStudent("22BEIT30046", "Meera Iyer"),
	)
	events := newFakeEventStore(ev)

	svc := NewTeamService(students, events, &recordingNotifier{}, &countingRecorder{}, nil, nil)
	svc.now = fixedClock
	return svc, students, events
}

func TestAddTeamParticipant(t *testing.T) {
	svc, students, events := seededTeamFixture(t)

	outcome, err := svc.AddParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30046")
	require.NoError(t, err)
	require.True(t, outcome.OK)

	p, ok := students.participation("22BEIT30046", "EV1")
	require.True(t, ok)
	assert.Equal(t, models.RegistrationTeamParticipant, p.RegistrationType)
	assert.Equal(t, "TEAM_1", p.TeamRegistrationID)
	assert.Equal(t, "Bit Benders", p.StudentData.TeamName)

	ev, _ := events.FindByID(context.Background(), "EV1")
	assert.Contains(t, ev.TeamRegistrations["TEAM_1"].Participants, "22BEIT30046")
	assert.Equal(t, "22BEIT30046", ev.Registrations[outcome.ID])
}

func TestAddTeamParticipantOnlyLeader(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	_, err := svc.AddParticipant(context.Background(), "22BEIT30044", "EV1", "TEAM_1", "22BEIT30046")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAddTeamParticipantAtMaxSize(t *testing.T) {
	svc, students, events := seededTeamFixture(t)

	// Fill the team to its maximum of 4.
	require.NoError(t, students.Create(context.Background(), activeStudent("22BEIT30047", "Ravi Nair")))
	outcome, err := svc.AddParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30046")
	require.NoError(t, err)
	require.True(t, outcome.OK)

	outcome, err = svc.AddParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30047")
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrCapacityViolation.Code, outcome.Code)

	ev, _ := events.FindByID(context.Background(), "EV1")
	assert.Len(t, ev.TeamRegistrations["TEAM_1"].Participants, 3)
}

func TestAddTeamParticipantAlreadyRegistered(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	outcome, err := svc.AddParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30044")
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, outcome.Code)
}

func TestRemoveTeamParticipant(t *testing.T) {
	svc, students, events := seededTeamFixture(t)

	outcome, err := svc.RemoveParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30045")
	require.NoError(t, err)
	require.True(t, outcome.OK)

	_, stillRegistered := students.participation("22BEIT30045", "EV1")
	assert.False(t, stillRegistered)

	ev, _ := events.FindByID(context.Background(), "EV1")
	assert.Equal(t, []string{"22BEIT30044"}, ev.TeamRegistrations["TEAM_1"].Participants)
	assert.NotContains(t, ev.Registrations, "REG_22BEIT30045")
}

func TestRemoveTeamParticipantFloor(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	// First removal leaves the team at its minimum of 2.
	outcome, err := svc.RemoveParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30045")
	require.NoError(t, err)
	require.True(t, outcome.OK)

	outcome, err = svc.RemoveParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30044")
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrCapacityViolation.Code, outcome.Code)
}

func TestRemoveTeamParticipantLeaderRefused(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	outcome, err := svc.RemoveParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30043")
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, outcome.Code)
}

func TestRemoveTeamParticipantNotAMember(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	outcome, err := svc.RemoveParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30046")
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, outcome.Code)
}

func TestTeamRosterChangesClosedAfterRegistration(t *testing.T) {
	svc, _, events := seededTeamFixture(t)
	// Shift the event into its running window, keeping the roster.
	running := runningEvent("EV1")
	running.TeamRegistrations = mustEvent(t, events, "EV1").TeamRegistrations
	require.NoError(t, events.Create(context.Background(), running))

	outcome, err := svc.AddParticipant(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30046")
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrPhaseClosed.Code, outcome.Code)
}

func TestUpdateParticipantContact(t *testing.T) {
	svc, students, _ := seededTeamFixture(t)

	outcome, err := svc.UpdateParticipantContact(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30044", UpdateContactRequest{
		Email:    "dev.shah@campus.local",
		MobileNo: "9876543210",
	})
	require.NoError(t, err)
	require.True(t, outcome.OK)

	p, ok := students.participation("22BEIT30044", "EV1")
	require.True(t, ok)
	assert.Equal(t, "dev.shah@campus.local", p.StudentData.Email)
	assert.Equal(t, "9876543210", p.StudentData.MobileNo)
}

func TestUpdateParticipantContactValidation(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	outcome, err := svc.UpdateParticipantContact(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30044", UpdateContactRequest{
		Email: "not-an-email",
	})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, outcome.Code)

	outcome, err = svc.UpdateParticipantContact(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30044", UpdateContactRequest{})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, outcome.Code)
}

func TestUpdateParticipantContactNotAMember(t *testing.T) {
	svc, _, _ := seededTeamFixture(t)

	outcome, err := svc.UpdateParticipantContact(context.Background(), "22BEIT30043", "EV1", "TEAM_1", "22BEIT30046", UpdateContactRequest{
		MobileNo: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, outcome.Code)
}

func mustEvent(t *testing.T, events *fakeEventStore, eventID string) *models.Event {
	t.Helper()
	ev, err := events.FindByID(context.Background(), eventID)
	require.NoError(t, err)
	return ev
}
