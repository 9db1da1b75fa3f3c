package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
)

// EventRepository provides typed access to the events collection. The maps
// it maintains (registrations, team_registrations, attendances, feedbacks,
// certificates) are projections of the authoritative student documents.
type EventRepository struct {
	store store.Store
}

// NewEventRepository instantiates an event repository.
func NewEventRepository(st store.Store) *EventRepository {
	return &EventRepository{store: st}
}

// FindByID loads an event document. Missing events surface as
// store.ErrNoDocument.
func (r *EventRepository) FindByID(ctx context.Context, eventID string) (*models.Event, error) {
	raw, err := r.store.FindOne(ctx, store.CollectionEvents, eventID)
	if err != nil {
		return nil, err
	}
	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	return &event, nil
}

// All returns every event document.
func (r *EventRepository) All(ctx context.Context) ([]models.Event, error) {
	raws, err := r.store.FindMany(ctx, store.CollectionEvents, 0)
	if err != nil {
		return nil, err
	}
	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		var event models.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Create inserts a new event document with its index maps initialized so
// later dotted-path writes always find their containers.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.Registrations == nil {
		event.Registrations = map[string]string{}
	}
	if event.TeamRegistrations == nil {
		event.TeamRegistrations = map[string]models.TeamRegistration{}
	}
	if event.Attendances == nil {
		event.Attendances = map[string]models.AttendanceRecord{}
	}
	if event.Feedbacks == nil {
		event.Feedbacks = map[string]models.FeedbackRecord{}
	}
	if event.Certificates == nil {
		event.Certificates = map[string]string{}
	}
	return r.store.InsertOne(ctx, store.CollectionEvents, event.EventID, event)
}

// SetRegistration records one registration in the event-side inverse index
// and bumps the registration counter in the same atomic update.
func (r *EventRepository) SetRegistration(ctx context.Context, eventID, registrationID, enrollmentNo string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{"registrations." + registrationID: enrollmentNo},
		Inc: map[string]float64{"stats.registrations": 1},
	})
	return err
}

// UnsetRegistration removes one registration index entry.
func (r *EventRepository) UnsetRegistration(ctx context.Context, eventID, registrationID string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Unset: []string{"registrations." + registrationID},
		Inc:   map[string]float64{"stats.registrations": -1},
	})
	return err
}

// SetTeamRegistration writes a team roster record.
func (r *EventRepository) SetTeamRegistration(ctx context.Context, eventID, teamRegistrationID string, team models.TeamRegistration) error {
	if team.Participants == nil {
		team.Participants = []string{}
	}
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{"team_registrations." + teamRegistrationID: team},
	})
	return err
}

// RemoveTeamRegistration deletes a team roster record. Member cleanup must
// happen first so an interrupted cascade leaves the roster as the recovery
// anchor.
func (r *EventRepository) RemoveTeamRegistration(ctx context.Context, eventID, teamRegistrationID string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Unset: []string{"team_registrations." + teamRegistrationID},
	})
	return err
}

// AddTeamParticipant appends an enrollment to a team roster (set union).
func (r *EventRepository) AddTeamParticipant(ctx context.Context, eventID, teamRegistrationID, enrollmentNo string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		AddToSet: map[string]interface{}{
			"team_registrations." + teamRegistrationID + ".participants": enrollmentNo,
		},
	})
	return err
}

// PullTeamParticipant removes an enrollment from a team roster.
func (r *EventRepository) PullTeamParticipant(ctx context.Context, eventID, teamRegistrationID, enrollmentNo string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Pull: map[string]interface{}{
			"team_registrations." + teamRegistrationID + ".participants": enrollmentNo,
		},
	})
	return err
}

// SetAttendance mirrors an attendance record into the event document.
func (r *EventRepository) SetAttendance(ctx context.Context, eventID, attendanceID string, record models.AttendanceRecord) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{"attendances." + attendanceID: record},
		Inc: map[string]float64{"stats.attendances": 1},
	})
	return err
}

// SetFeedback stores submitted feedback content under its feedback id.
func (r *EventRepository) SetFeedback(ctx context.Context, eventID, feedbackID string, record models.FeedbackRecord) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{"feedbacks." + feedbackID: record},
		Inc: map[string]float64{"stats.feedbacks": 1},
	})
	return err
}

// SetCertificate mirrors an issued certificate into the event document.
func (r *EventRepository) SetCertificate(ctx context.Context, eventID, certificateID, enrollmentNo string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{"certificates." + certificateID: enrollmentNo},
		Inc: map[string]float64{"stats.certificates": 1},
	})
	return err
}

// ReplaceIndexes overwrites the registration indexes wholesale with a rebuilt
// projection and resets the registration counter to match. Used by
// reconciliation repair.
func (r *EventRepository) ReplaceIndexes(ctx context.Context, eventID string, registrations map[string]string, teams map[string]models.TeamRegistration) error {
	if registrations == nil {
		registrations = map[string]string{}
	}
	if teams == nil {
		teams = map[string]models.TeamRegistration{}
	}
	for id, team := range teams {
		if team.Participants == nil {
			team.Participants = []string{}
			teams[id] = team
		}
	}
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{
			"registrations":       registrations,
			"team_registrations":  teams,
			"stats.registrations": len(registrations),
		},
	})
	return err
}

// SetDerivedStatus persists the recomputed status pair. Best effort: the
// stored values are a convenience for admin queries, never a gating input.
func (r *EventRepository) SetDerivedStatus(ctx context.Context, eventID string, status models.EventStatus, subStatus models.EventSubStatus) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionEvents, eventID, store.UpdateSpec{
		Set: map[string]interface{}{
			"status":     status,
			"sub_status": subStatus,
		},
	})
	return err
}
