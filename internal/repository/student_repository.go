package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
)

// StudentRepository provides typed access to the students collection.
type StudentRepository struct {
	store store.Store
}

// NewStudentRepository instantiates a student repository.
func NewStudentRepository(st store.Store) *StudentRepository {
	return &StudentRepository{store: st}
}

func participationPath(eventID string) string {
	return fmt.Sprintf("event_participations.%s", eventID)
}

// FindByEnrollment loads a student document by enrollment number. Missing
// students surface as store.ErrNoDocument.
func (r *StudentRepository) FindByEnrollment(ctx context.Context, enrollmentNo string) (*models.Student, error) {
	raw, err := r.store.FindOne(ctx, store.CollectionStudents, enrollmentNo)
	if err != nil {
		return nil, err
	}
	var student models.Student
	if err := json.Unmarshal(raw, &student); err != nil {
		return nil, fmt.Errorf("decode student %s: %w", enrollmentNo, err)
	}
	return &student, nil
}

// All returns every student document. Used by reconciliation scans.
func (r *StudentRepository) All(ctx context.Context) ([]models.Student, error) {
	raws, err := r.store.FindMany(ctx, store.CollectionStudents, 0)
	if err != nil {
		return nil, err
	}
	students := make([]models.Student, 0, len(raws))
	for _, raw := range raws {
		var student models.Student
		if err := json.Unmarshal(raw, &student); err != nil {
			return nil, fmt.Errorf("decode student: %w", err)
		}
		students = append(students, student)
	}
	return students, nil
}

// Create inserts a new student document.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.EventParticipations == nil {
		student.EventParticipations = map[string]models.Participation{}
	}
	return r.store.InsertOne(ctx, store.CollectionStudents, student.EnrollmentNo, student)
}

// SetParticipation writes the full participation entry for one event.
func (r *StudentRepository) SetParticipation(ctx context.Context, enrollmentNo, eventID string, p models.Participation) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionStudents, enrollmentNo, store.UpdateSpec{
		Set: map[string]interface{}{participationPath(eventID): p},
	})
	return err
}

// SetParticipationFields patches individual fields of an existing
// participation entry without rewriting the rest of the chain.
func (r *StudentRepository) SetParticipationFields(ctx context.Context, enrollmentNo, eventID string, fields map[string]interface{}) error {
	set := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		set[participationPath(eventID)+"."+field] = value
	}
	_, err := r.store.UpdateOne(ctx, store.CollectionStudents, enrollmentNo, store.UpdateSpec{Set: set})
	return err
}

// RemoveParticipation deletes the whole participation entry for one event,
// clearing the identifier chain in a single operation.
func (r *StudentRepository) RemoveParticipation(ctx context.Context, enrollmentNo, eventID string) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionStudents, enrollmentNo, store.UpdateSpec{
		Unset: []string{participationPath(eventID)},
	})
	return err
}

// UpdateLastLogin stamps the last successful login time.
func (r *StudentRepository) UpdateLastLogin(ctx context.Context, enrollmentNo string, ts time.Time) error {
	_, err := r.store.UpdateOne(ctx, store.CollectionStudents, enrollmentNo, store.UpdateSpec{
		Set: map[string]interface{}{"last_login": ts},
	})
	return err
}
