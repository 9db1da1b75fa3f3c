package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fakeStudentStore is an in-memory studentStore keeping real document
// semantics so multi-step lifecycle tests exercise the same state
// transitions the repository would.
type fakeStudentStore struct {
	mu       sync.Mutex
	students map[string]*models.Student

	failSetParticipation bool
}

func newFakeStudentStore(students ...*models.Student) *fakeStudentStore {
	m := make(map[string]*models.Student, len(students))
	for _, s := range students {
		if s.EventParticipations == nil {
			s.EventParticipations = map[string]models.Participation{}
		}
		m[s.EnrollmentNo] = s
	}
	return &fakeStudentStore{students: m}
}

func (f *fakeStudentStore) FindByEnrollment(ctx context.Context, enrollmentNo string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[enrollmentNo]
	if !ok {
		return nil, store.ErrNoDocument
	}
	clone := *s
	clone.EventParticipations = make(map[string]models.Participation, len(s.EventParticipations))
	for k, v := range s.EventParticipations {
		clone.EventParticipations[k] = v
	}
	return &clone, nil
}

func (f *fakeStudentStore) All(ctx context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStudentStore) Create(ctx context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.students[student.EnrollmentNo]; exists {
		return errors.New("duplicate key")
	}
	// Store a copy: the real store serializes the document at insert time,
	// so later mutations of the caller's pointer must not leak in.
	clone := *student
	clone.EventParticipations = make(map[string]models.Participation, len(student.EventParticipations))
	for k, v := range student.EventParticipations {
		clone.EventParticipations[k] = v
	}
	f.students[student.EnrollmentNo] = &clone
	return nil
}

func (f *fakeStudentStore) SetParticipation(ctx context.Context, enrollmentNo, eventID string, p models.Participation) error {
	if f.failSetParticipation {
		return errors.New("write refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[enrollmentNo]
	if !ok {
		return store.ErrNoDocument
	}
	s.EventParticipations[eventID] = p
	return nil
}

func (f *fakeStudentStore) SetParticipationFields(ctx context.Context, enrollmentNo, eventID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[enrollmentNo]
	if !ok {
		return store.ErrNoDocument
	}
	p := s.EventParticipations[eventID]
	for field, value := range fields {
		switch field {
		case "attendance_id":
			p.AttendanceID = value.(string)
		case "attendance_status":
			p.AttendanceStatus = value.(models.AttendanceStatus)
		case "attendance_marked_at":
			ts := value.(time.Time)
			p.AttendanceMarkedAt = &ts
		case "feedback_id":
			p.FeedbackID = value.(string)
		case "certificate_id":
			p.CertificateID = value.(string)
		case "payment_status":
			p.PaymentStatus = value.(models.PaymentStatus)
		case "payment_completed_datetime":
			ts := value.(time.Time)
			p.PaymentCompletedAt = &ts
		case "student_data.email":
			p.StudentData.Email = value.(string)
		case "student_data.mobile_no":
			p.StudentData.MobileNo = value.(string)
		}
	}
	s.EventParticipations[eventID] = p
	return nil
}

func (f *fakeStudentStore) RemoveParticipation(ctx context.Context, enrollmentNo, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[enrollmentNo]
	if !ok {
		return store.ErrNoDocument
	}
	delete(s.EventParticipations, eventID)
	return nil
}

func (f *fakeStudentStore) UpdateLastLogin(ctx context.Context, enrollmentNo string, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[enrollmentNo]; ok {
		s.LastLogin = &ts
	}
	return nil
}

func (f *fakeStudentStore) participation(enrollmentNo, eventID string) (models.Participation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[enrollmentNo]
	if !ok {
		return models.Participation{}, false
	}
	p, ok := s.EventParticipations[eventID]
	return p, ok
}

// fakeEventStore is an in-memory eventStore.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[string]*models.Event

	failSetRegistration bool
}

func newFakeEventStore(events ...*models.Event) *fakeEventStore {
	m := make(map[string]*models.Event, len(events))
	for _, ev := range events {
		ensureEventMaps(ev)
		m[ev.EventID] = ev
	}
	return &fakeEventStore{events: m}
}

func ensureEventMaps(ev *models.Event) {
	if ev.Registrations == nil {
		ev.Registrations = map[string]string{}
	}
	if ev.TeamRegistrations == nil {
		ev.TeamRegistrations = map[string]models.TeamRegistration{}
	}
	if ev.Attendances == nil {
		ev.Attendances = map[string]models.AttendanceRecord{}
	}
	if ev.Feedbacks == nil {
		ev.Feedbacks = map[string]models.FeedbackRecord{}
	}
	if ev.Certificates == nil {
		ev.Certificates = map[string]string{}
	}
}

func (f *fakeEventStore) get(eventID string) (*models.Event, error) {
	ev, ok := f.events[eventID]
	if !ok {
		return nil, store.ErrNoDocument
	}
	return ev, nil
}

func (f *fakeEventStore) FindByID(ctx context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return nil, err
	}
	clone := *ev
	clone.Registrations = copyStringMap(ev.Registrations)
	clone.TeamRegistrations = copyTeamMap(ev.TeamRegistrations)
	clone.Attendances = copyAttendanceMap(ev.Attendances)
	clone.Feedbacks = copyFeedbackMap(ev.Feedbacks)
	clone.Certificates = copyStringMap(ev.Certificates)
	return &clone, nil
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyTeamMap(in map[string]models.TeamRegistration) map[string]models.TeamRegistration {
	out := make(map[string]models.TeamRegistration, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyAttendanceMap(in map[string]models.AttendanceRecord) map[string]models.AttendanceRecord {
	out := make(map[string]models.AttendanceRecord, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyFeedbackMap(in map[string]models.FeedbackRecord) map[string]models.FeedbackRecord {
	out := make(map[string]models.FeedbackRecord, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (f *fakeEventStore) All(ctx context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Event, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, *ev)
	}
	return out, nil
}

func (f *fakeEventStore) Create(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ensureEventMaps(event)
	f.events[event.EventID] = event
	return nil
}

func (f *fakeEventStore) SetRegistration(ctx context.Context, eventID, registrationID, enrollmentNo string) error {
	if f.failSetRegistration {
		return errors.New("write refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.Registrations[registrationID] = enrollmentNo
	ev.Stats.Registrations++
	return nil
}

func (f *fakeEventStore) UnsetRegistration(ctx context.Context, eventID, registrationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	delete(ev.Registrations, registrationID)
	ev.Stats.Registrations--
	return nil
}

func (f *fakeEventStore) SetTeamRegistration(ctx context.Context, eventID, teamRegistrationID string, team models.TeamRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.TeamRegistrations[teamRegistrationID] = team
	return nil
}

func (f *fakeEventStore) RemoveTeamRegistration(ctx context.Context, eventID, teamRegistrationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	delete(ev.TeamRegistrations, teamRegistrationID)
	return nil
}

func (f *fakeEventStore) AddTeamParticipant(ctx context.Context, eventID, teamRegistrationID, enrollmentNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	team := ev.TeamRegistrations[teamRegistrationID]
	for _, member := range team.Participants {
		if member == enrollmentNo {
			return nil
		}
	}
	team.Participants = append(team.Participants, enrollmentNo)
	ev.TeamRegistrations[teamRegistrationID] = team
	return nil
}

func (f *fakeEventStore) PullTeamParticipant(ctx context.Context, eventID, teamRegistrationID, enrollmentNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	team := ev.TeamRegistrations[teamRegistrationID]
	kept := team.Participants[:0]
	for _, member := range team.Participants {
		if member != enrollmentNo {
			kept = append(kept, member)
		}
	}
	team.Participants = kept
	ev.TeamRegistrations[teamRegistrationID] = team
	return nil
}

func (f *fakeEventStore) SetAttendance(ctx context.Context, eventID, attendanceID string, record models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.Attendances[attendanceID] = record
	ev.Stats.Attendances++
	return nil
}

func (f *fakeEventStore) SetFeedback(ctx context.Context, eventID, feedbackID string, record models.FeedbackRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.Feedbacks[feedbackID] = record
	ev.Stats.Feedbacks++
	return nil
}

func (f *fakeEventStore) SetCertificate(ctx context.Context, eventID, certificateID, enrollmentNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.Certificates[certificateID] = enrollmentNo
	ev.Stats.Certificates++
	return nil
}

func (f *fakeEventStore) ReplaceIndexes(ctx context.Context, eventID string, registrations map[string]string, teams map[string]models.TeamRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.Registrations = registrations
	ev.TeamRegistrations = teams
	ev.Stats.Registrations = len(registrations)
	return nil
}

func (f *fakeEventStore) SetDerivedStatus(ctx context.Context, eventID string, status models.EventStatus, subStatus models.EventSubStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, err := f.get(eventID)
	if err != nil {
		return err
	}
	ev.Status = status
	ev.SubStatus = subStatus
	return nil
}

// recordingNotifier captures notification calls.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingNotifier) note(kind, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, kind+":"+to)
}

func (r *recordingNotifier) RegistrationConfirmed(to, name string, event *models.Event, registrationID string) {
	r.note("registration", to)
}

func (r *recordingNotifier) AttendanceConfirmed(to, name string, event *models.Event, attendanceID string) {
	r.note("attendance", to)
}

func (r *recordingNotifier) FeedbackReceived(to, name string, event *models.Event, feedbackID string) {
	r.note("feedback", to)
}

func (r *recordingNotifier) CertificateIssued(to, name string, event *models.Event, certificateID string) {
	r.note("certificate", to)
}

// countingRecorder tallies lifecycle transition outcomes.
type countingRecorder struct {
	mu       sync.Mutex
	ok       int
	rejected int
}

func (r *countingRecorder) RecordTransition(operation string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.ok++
	} else {
		r.rejected++
	}
}

// Event fixtures positioned relative to testNow.

func openEvent(eventID string) *models.Event {
	ev := &models.Event{
		EventID:               eventID,
		EventName:             "Hackathon 2026",
		RegistrationStartDate: "2026-03-01",
		RegistrationEndDate:   "2026-03-15",
		StartDate:             "2026-03-20",
		EndDate:               "2026-03-21",
		CertificateEndDate:    "2026-04-21",
		RegistrationMode:      models.ModeIndividual,
		RegistrationType:      models.FeeFree,
	}
	ensureEventMaps(ev)
	return ev
}

func runningEvent(eventID string) *models.Event {
	ev := openEvent(eventID)
	ev.RegistrationStartDate = "2026-02-01"
	ev.RegistrationEndDate = "2026-02-15"
	ev.StartDate = "2026-03-09"
	ev.EndDate = "2026-03-11"
	ev.CertificateEndDate = "2026-04-11"
	return ev
}

func endedEvent(eventID string) *models.Event {
	ev := openEvent(eventID)
	ev.RegistrationStartDate = "2026-02-01"
	ev.RegistrationEndDate = "2026-02-15"
	ev.StartDate = "2026-03-05"
	ev.EndDate = "2026-03-08"
	ev.CertificateEndDate = "2026-04-08"
	return ev
}

func teamEvent(eventID string) *models.Event {
	ev := openEvent(eventID)
	ev.RegistrationMode = models.ModeTeam
	ev.TeamSizeMin = 2
	ev.TeamSizeMax = 4
	return ev
}

func activeStudent(enrollmentNo, name string) *models.Student {
	return &models.Student{
		EnrollmentNo:        enrollmentNo,
		FullName:            name,
		Email:               enrollmentNo + "@campus.local",
		Department:          "IT",
		IsActive:            true,
		EventParticipations: map[string]models.Participation{},
	}
}
