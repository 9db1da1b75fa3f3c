package models

import (
	"regexp"
	"time"
)

// Student is the student-centric document. It is the authoritative view for
// per-student lifecycle state; the event document carries rebuildable indexes.
type Student struct {
	EnrollmentNo        string                   `json:"enrollment_no"`
	FullName            string                   `json:"full_name"`
	Email               string                   `json:"email"`
	MobileNo            string                   `json:"mobile_no"`
	Department          string                   `json:"department"`
	Semester            string                   `json:"semester"`
	Gender              string                   `json:"gender"`
	DateOfBirth         string                   `json:"date_of_birth"`
	PasswordHash        string                   `json:"password_hash"`
	IsActive            bool                     `json:"is_active"`
	LastLogin           *time.Time               `json:"last_login,omitempty"`
	EventParticipations map[string]Participation `json:"event_participations"`
}

// Participation returns the student's lifecycle record for an event, if any.
func (s *Student) Participation(eventID string) (Participation, bool) {
	if s == nil || s.EventParticipations == nil {
		return Participation{}, false
	}
	p, ok := s.EventParticipations[eventID]
	return p, ok
}

var enrollmentPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{2,5}[0-9]{5}$`)

// ValidEnrollmentNo reports whether the enrollment number matches the
// institutional format, e.g. 22BEIT30043.
func ValidEnrollmentNo(enrollmentNo string) bool {
	return enrollmentPattern.MatchString(enrollmentNo)
}

// RegistrationType distinguishes individual registrations from team roles.
type RegistrationType string

const (
	RegistrationIndividual      RegistrationType = "individual"
	RegistrationTeamLeader      RegistrationType = "team_leader"
	RegistrationTeamParticipant RegistrationType = "team_participant"
)

// AttendanceStatus records presence at the event.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// PaymentStatus tracks the payment step of paid events.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Participation holds one student's identifier chain for one event.
// The chain is monotonic: certificate requires feedback, feedback requires
// attendance, attendance requires registration. Cancellation removes the
// whole entry rather than clearing individual identifiers.
type Participation struct {
	RegistrationID     string           `json:"registration_id,omitempty"`
	RegistrationType   RegistrationType `json:"registration_type"`
	TeamRegistrationID string           `json:"team_registration_id,omitempty"`
	RegisteredAt       time.Time        `json:"registration_datetime"`
	AttendanceID       string           `json:"attendance_id,omitempty"`
	AttendanceStatus   AttendanceStatus `json:"attendance_status,omitempty"`
	AttendanceMarkedAt *time.Time       `json:"attendance_marked_at,omitempty"`
	FeedbackID         string           `json:"feedback_id,omitempty"`
	CertificateID      string           `json:"certificate_id,omitempty"`
	PaymentStatus      PaymentStatus    `json:"payment_status,omitempty"`
	PaymentCompletedAt *time.Time       `json:"payment_completed_datetime,omitempty"`
	StudentData        StudentSnapshot  `json:"student_data"`
}

// IsTeam reports whether the participation belongs to a team registration.
func (p Participation) IsTeam() bool {
	return p.RegistrationType == RegistrationTeamLeader || p.RegistrationType == RegistrationTeamParticipant
}

// StudentSnapshot freezes the student's profile at registration time so later
// profile edits do not rewrite historical registrations.
type StudentSnapshot struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	MobileNo    string `json:"mobile_no"`
	Department  string `json:"department"`
	Semester    string `json:"semester"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	TeamName    string `json:"team_name,omitempty"`
}

// SnapshotOf captures the snapshot fields from a student profile.
func SnapshotOf(s *Student, teamName string) StudentSnapshot {
	return StudentSnapshot{
		FullName:    s.FullName,
		Email:       s.Email,
		MobileNo:    s.MobileNo,
		Department:  s.Department,
		Semester:    s.Semester,
		Gender:      s.Gender,
		DateOfBirth: s.DateOfBirth,
		TeamName:    teamName,
	}
}
