package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/events-api/internal/models"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

func attendedStudent(enrollmentNo, name, eventID string) *models.Student {
	s := registeredStudent(enrollmentNo, name, eventID)
	p := s.EventParticipations[eventID]
	p.AttendanceID = "ATT_SEED"
	p.AttendanceStatus = models.AttendancePresent
	s.EventParticipations[eventID] = p
	return s
}

func newFeedbackFixture(t *testing.T, students *fakeStudentStore, events *fakeEventStore) (*FeedbackService, *recordingNotifier) {
	t.Helper()
	notify := &recordingNotifier{}
	svc := NewFeedbackService(students, events, notify, &countingRecorder{}, nil, nil)
	svc.now = fixedClock
	return svc, notify
}

func TestSubmitFeedback(t *testing.T) {
	students := newFakeStudentStore(attendedStudent("22BEIT30043", "Asha Patel", "EV1"))
	events := newFakeEventStore(endedEvent("EV1"))
	svc, notify := newFeedbackFixture(t, students, events)

	outcome, err := svc.Submit(context.Background(), "22BEIT30043", "EV1", SubmitFeedbackRequest{
		Rating:   5,
		Comments: "Great event",
	})
	require.NoError(t, err)
	require.True(t, outcome.OK)
	assert.NotEmpty(t, outcome.ID)

	p, _ := students.participation("22BEIT30043", "EV1")
	assert.Equal(t, outcome.ID, p.FeedbackID)

	ev, _ := events.FindByID(context.Background(), "EV1")
	record, ok := ev.Feedbacks[outcome.ID]
	require.True(t, ok)
	assert.Equal(t, 5, record.Rating)
	assert.Equal(t, "Great event", record.Comments)
	assert.Equal(t, 1, ev.Stats.Feedbacks)

	assert.Equal(t, []string{"feedback:22BEIT30043@campus.local"}, notify.calls)
}

func TestSubmitFeedbackRequiresAttendance(t *testing.T) {
	students := newFakeStudentStore(registeredStudent("22BEIT30043", "Asha Patel", "EV1"))
	events := newFakeEventStore(endedEvent("EV1"))
	svc, _ := newFeedbackFixture(t, students, events)

	outcome, err := svc.Submit(context.Background(), "22BEIT30043", "EV1", SubmitFeedbackRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrPrerequisiteMissing.Code, outcome.Code)
	assert.Equal(t, "student did not attend the event", outcome.Message)
}

func TestSubmitFeedbackDuplicateReturnsOriginalID(t *testing.T) {
	students := newFakeStudentStore(attendedStudent("22BEIT30043", "Asha Patel", "EV1"))
	events := newFakeEventStore(endedEvent("EV1"))
	svc, _ := newFeedbackFixture(t, students, events)

	first, err := svc.Submit(context.Background(), "22BEIT30043", "EV1", SubmitFeedbackRequest{Rating: 4})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), "22BEIT30043", "EV1", SubmitFeedbackRequest{Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrAlreadyCompleted.Code, second.Code)
	assert.Equal(t, first.ID, second.ID)
}

func TestSubmitFeedbackBeforeEventEnds(t *testing.T) {
	students := newFakeStudentStore(attendedStudent("22BEIT30043", "Asha Patel", "EV1"))
	events := newFakeEventStore(runningEvent("EV1"))
	svc, _ := newFeedbackFixture(t, students, events)

	outcome, err := svc.Submit(context.Background(), "22BEIT30043", "EV1", SubmitFeedbackRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrPhaseClosed.Code, outcome.Code)
}

func TestSubmitFeedbackRatingBounds(t *testing.T) {
	students := newFakeStudentStore(attendedStudent("22BEIT30043", "Asha Patel", "EV1"))
	events := newFakeEventStore(endedEvent("EV1"))
	svc, _ := newFeedbackFixture(t, students, events)

	for _, rating := range []int{0, 6, -1} {
		outcome, err := svc.Submit(context.Background(), "22BEIT30043", "EV1", SubmitFeedbackRequest{Rating: rating})
		require.NoError(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, outcome.Code, "rating %d", rating)
	}
}
