package models

import "time"

// EventStatus is the coarse, time-derived lifecycle phase of an event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// EventSubStatus is the fine-grained, time-derived phase. All lifecycle
// gating reads sub_status, never raw timestamps.
type EventSubStatus string

const (
	SubStatusRegistrationNotStarted EventSubStatus = "registration_not_started"
	SubStatusRegistrationOpen       EventSubStatus = "registration_open"
	SubStatusRegistrationClosed     EventSubStatus = "registration_closed"
	SubStatusEventStarted           EventSubStatus = "event_started"
	SubStatusEventEnded             EventSubStatus = "event_ended"
	SubStatusCertificateAvailable   EventSubStatus = "certificate_available"
	SubStatusEventCompleted         EventSubStatus = "event_completed"
)

// RegistrationMode distinguishes individual events from team events.
type RegistrationMode string

const (
	ModeIndividual RegistrationMode = "individual"
	ModeTeam       RegistrationMode = "team"
)

// FeeType distinguishes free events from paid events.
type FeeType string

const (
	FeeFree FeeType = "free"
	FeePaid FeeType = "paid"
)

// Event is the event-centric document. Scheduling fields are stored as
// date/time string pairs; status and sub_status are derived from them on
// every read. The registrations/team_registrations/attendances/feedbacks/
// certificates maps are inverse indexes rebuildable from student documents.
type Event struct {
	EventID     string `json:"event_id"`
	EventName   string `json:"event_name"`
	Description string `json:"description,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Organizer   string `json:"organizer,omitempty"`

	RegistrationStartDate string `json:"registration_start_date"`
	RegistrationStartTime string `json:"registration_start_time"`
	RegistrationEndDate   string `json:"registration_end_date"`
	RegistrationEndTime   string `json:"registration_end_time"`
	StartDate             string `json:"start_date"`
	StartTime             string `json:"start_time"`
	EndDate               string `json:"end_date"`
	EndTime               string `json:"end_time"`
	CertificateEndDate    string `json:"certificate_end_date"`
	CertificateEndTime    string `json:"certificate_end_time"`

	Status    EventStatus    `json:"status,omitempty"`
	SubStatus EventSubStatus `json:"sub_status,omitempty"`

	RegistrationMode RegistrationMode `json:"registration_mode"`
	RegistrationType FeeType          `json:"registration_type"`
	RegistrationFee  float64          `json:"registration_fee,omitempty"`
	TeamSizeMin      int              `json:"team_size_min,omitempty"`
	TeamSizeMax      int              `json:"team_size_max,omitempty"`
	MaxParticipants  int              `json:"max_participants,omitempty"`

	Registrations     map[string]string           `json:"registrations"`
	TeamRegistrations map[string]TeamRegistration `json:"team_registrations"`
	Attendances       map[string]AttendanceRecord `json:"attendances"`
	Feedbacks         map[string]FeedbackRecord   `json:"feedbacks"`
	Certificates      map[string]string           `json:"certificates"`

	Stats EventStats `json:"stats"`
}

// TeamRegistration is the event-side roster of one team booking.
type TeamRegistration struct {
	TeamName             string    `json:"team_name"`
	TeamLeaderEnrollment string    `json:"team_leader_enrollment"`
	Participants         []string  `json:"participants"`
	RegistrationDate     time.Time `json:"registration_date"`
}

// Size is the full team headcount including the leader.
func (t TeamRegistration) Size() int {
	return len(t.Participants) + 1
}

// Members lists every enrollment in the team, leader first.
func (t TeamRegistration) Members() []string {
	members := make([]string, 0, t.Size())
	members = append(members, t.TeamLeaderEnrollment)
	return append(members, t.Participants...)
}

// AttendanceRecord mirrors attendance into the event document for counting
// and admin views. The student document stays authoritative.
type AttendanceRecord struct {
	EnrollmentNo string           `json:"enrollment_no"`
	FullName     string           `json:"full_name"`
	MarkedAt     time.Time        `json:"marked_at"`
	Status       AttendanceStatus `json:"status"`
}

// FeedbackRecord stores submitted feedback content, keyed by feedback_id.
type FeedbackRecord struct {
	EnrollmentNo string    `json:"enrollment_no"`
	Rating       int       `json:"rating"`
	Comments     string    `json:"comments,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// EventStats carries denormalized counters maintained with atomic increments.
type EventStats struct {
	Registrations int `json:"registrations"`
	Attendances   int `json:"attendances"`
	Feedbacks     int `json:"feedbacks"`
	Certificates  int `json:"certificates"`
}

// RegisteredCount is the number of individual registrations recorded on the
// event, counting every team member separately.
func (e *Event) RegisteredCount() int {
	return len(e.Registrations)
}

// AtCapacity reports whether max_participants would be exceeded by adding n
// more registrants. A zero max means unlimited.
func (e *Event) AtCapacity(n int) bool {
	return e.MaxParticipants > 0 && e.RegisteredCount()+n > e.MaxParticipants
}

// TeamBounds returns the effective team size range, defaulting to [2, 10]
// when the event does not specify one.
func (e *Event) TeamBounds() (min, max int) {
	min, max = e.TeamSizeMin, e.TeamSizeMax
	if min <= 0 {
		min = 2
	}
	if max <= 0 {
		max = 10
	}
	return min, max
}
