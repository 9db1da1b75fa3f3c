package lifecycle

import (
	"sort"
	"time"

	"github.com/campushq/events-api/internal/models"
)

// EventIndex is the event-side projection of registrations derivable from
// the authoritative student documents. Reconciliation rebuilds drifting
// event indexes from it.
type EventIndex struct {
	Registrations     map[string]string
	TeamRegistrations map[string]models.TeamRegistration
}

// RebuildEventIndex derives the event-side indexes for one event from the
// full set of student documents. Team rosters are reassembled from the
// members' shared team_registration_id; participants are sorted by
// enrollment for determinism and the roster's registration date is the
// earliest member registration.
func RebuildEventIndex(eventID string, students []models.Student) EventIndex {
	index := EventIndex{
		Registrations:     make(map[string]string),
		TeamRegistrations: make(map[string]models.TeamRegistration),
	}

	earliest := make(map[string]time.Time)
	for _, student := range students {
		p, ok := student.Participation(eventID)
		if !ok || p.RegistrationID == "" {
			continue
		}
		index.Registrations[p.RegistrationID] = student.EnrollmentNo

		if !p.IsTeam() || p.TeamRegistrationID == "" {
			continue
		}
		team := index.TeamRegistrations[p.TeamRegistrationID]
		if team.TeamName == "" {
			team.TeamName = p.StudentData.TeamName
		}
		if p.RegistrationType == models.RegistrationTeamLeader {
			team.TeamLeaderEnrollment = student.EnrollmentNo
		} else {
			team.Participants = append(team.Participants, student.EnrollmentNo)
		}
		if first, ok := earliest[p.TeamRegistrationID]; !ok || p.RegisteredAt.Before(first) {
			earliest[p.TeamRegistrationID] = p.RegisteredAt
		}
		team.RegistrationDate = earliest[p.TeamRegistrationID]
		index.TeamRegistrations[p.TeamRegistrationID] = team
	}

	for id, team := range index.TeamRegistrations {
		sort.Strings(team.Participants)
		index.TeamRegistrations[id] = team
	}
	return index
}

// DriftReport lists inconsistencies between the event document and the
// student documents for one event.
type DriftReport struct {
	EventID string `json:"event_id"`

	// OrphanRegistrations are registration ids present on the event with no
	// matching student participation.
	OrphanRegistrations []string `json:"orphan_registrations,omitempty"`
	// MissingRegistrations are student-held registration ids absent from
	// the event's registrations index.
	MissingRegistrations []string `json:"missing_registrations,omitempty"`
	// OrphanTeamRefs are team_registration_ids referenced by participations
	// but absent from the event's team roster map.
	OrphanTeamRefs []string `json:"orphan_team_refs,omitempty"`
	// DanglingTeamRecords are team roster entries naming members that hold
	// no matching participation.
	DanglingTeamRecords []string `json:"dangling_team_records,omitempty"`
}

// Clean reports whether the two views agree.
func (r DriftReport) Clean() bool {
	return len(r.OrphanRegistrations) == 0 && len(r.MissingRegistrations) == 0 &&
		len(r.OrphanTeamRefs) == 0 && len(r.DanglingTeamRecords) == 0
}

// DetectDrift compares the event-side indexes against the authoritative
// student documents and reports every divergence. It never mutates either
// view; repairs are a separate, operator-triggered step.
func DetectDrift(ev *models.Event, students []models.Student) DriftReport {
	report := DriftReport{EventID: ev.EventID}
	rebuilt := RebuildEventIndex(ev.EventID, students)

	for regID := range ev.Registrations {
		if _, ok := rebuilt.Registrations[regID]; !ok {
			report.OrphanRegistrations = append(report.OrphanRegistrations, regID)
		}
	}
	for regID := range rebuilt.Registrations {
		if _, ok := ev.Registrations[regID]; !ok {
			report.MissingRegistrations = append(report.MissingRegistrations, regID)
		}
	}
	for teamID := range rebuilt.TeamRegistrations {
		if _, ok := ev.TeamRegistrations[teamID]; !ok {
			report.OrphanTeamRefs = append(report.OrphanTeamRefs, teamID)
		}
	}

	participationsByEnrollment := make(map[string]models.Participation)
	for _, student := range students {
		if p, ok := student.Participation(ev.EventID); ok {
			participationsByEnrollment[student.EnrollmentNo] = p
		}
	}
	for teamID, team := range ev.TeamRegistrations {
		for _, member := range team.Members() {
			p, ok := participationsByEnrollment[member]
			if !ok || p.TeamRegistrationID != teamID {
				report.DanglingTeamRecords = append(report.DanglingTeamRecords, teamID)
				break
			}
		}
	}

	sort.Strings(report.OrphanRegistrations)
	sort.Strings(report.MissingRegistrations)
	sort.Strings(report.OrphanTeamRefs)
	sort.Strings(report.DanglingTeamRecords)
	return report
}
