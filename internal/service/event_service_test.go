package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/events-api/internal/models"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

func newEventFixture(t *testing.T, events *fakeEventStore) *EventService {
	t.Helper()
	svc := NewEventService(events, nil, time.Minute, nil, nil)
	svc.now = fixedClock
	return svc
}

func TestGetEventDerivesStatus(t *testing.T) {
	ev := openEvent("EV1")
	ev.Status = models.EventCompleted // stale stored value
	events := newFakeEventStore(ev)
	svc := newEventFixture(t, events)

	got, err := svc.Get(context.Background(), "EV1")
	require.NoError(t, err)
	assert.Equal(t, models.EventUpcoming, got.Status)
	assert.Equal(t, models.SubStatusRegistrationOpen, got.SubStatus)

	// The recomputed pair is written back for admin-side queries.
	stored, _ := events.FindByID(context.Background(), "EV1")
	assert.Equal(t, models.EventUpcoming, stored.Status)
}

func TestGetEventNotFound(t *testing.T) {
	svc := newEventFixture(t, newFakeEventStore())

	_, err := svc.Get(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListAvailableFiltersByPhase(t *testing.T) {
	events := newFakeEventStore(openEvent("EV1"), runningEvent("EV2"), endedEvent("EV3"))
	svc := newEventFixture(t, events)

	open, err := svc.ListAvailable(context.Background(), "registration_open")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "EV1", open[0].EventID)

	ongoing, err := svc.ListAvailable(context.Background(), "ongoing")
	require.NoError(t, err)
	require.Len(t, ongoing, 1)
	assert.Equal(t, "EV2", ongoing[0].EventID)

	all, err := svc.ListAvailable(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateEvent(t *testing.T) {
	events := newFakeEventStore()
	svc := newEventFixture(t, events)

	created, err := svc.Create(context.Background(), CreateEventRequest{
		EventName:             "Hackathon 2026",
		RegistrationStartDate: "2026-03-01",
		RegistrationEndDate:   "2026-03-15",
		StartDate:             "2026-03-20",
		EndDate:               "2026-03-21",
		CertificateEndDate:    "2026-04-21",
		RegistrationMode:      models.ModeIndividual,
		RegistrationType:      models.FeeFree,
	})
	require.NoError(t, err)
	assert.Len(t, created.EventID, 12)
	assert.Equal(t, models.EventUpcoming, created.Status)
	assert.Equal(t, models.SubStatusRegistrationOpen, created.SubStatus)

	stored, err := events.FindByID(context.Background(), created.EventID)
	require.NoError(t, err)
	assert.Equal(t, "Hackathon 2026", stored.EventName)
}

func TestCreateEventValidation(t *testing.T) {
	svc := newEventFixture(t, newFakeEventStore())

	_, err := svc.Create(context.Background(), CreateEventRequest{
		EventName:        "Broken",
		RegistrationMode: "pairs",
		RegistrationType: models.FeeFree,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateEventTeamSizeOrder(t *testing.T) {
	svc := newEventFixture(t, newFakeEventStore())

	_, err := svc.Create(context.Background(), CreateEventRequest{
		EventName:             "Team Clash",
		RegistrationStartDate: "2026-03-01",
		RegistrationEndDate:   "2026-03-15",
		StartDate:             "2026-03-20",
		EndDate:               "2026-03-21",
		CertificateEndDate:    "2026-04-21",
		RegistrationMode:      models.ModeTeam,
		RegistrationType:      models.FeeFree,
		TeamSizeMin:           5,
		TeamSizeMax:           3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
