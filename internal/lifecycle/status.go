package lifecycle

import (
	"time"

	"github.com/campushq/events-api/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// parseSchedule combines a date and time string pair into an instant.
// Missing or unparseable fields fall back to the provided instant (fail
// open) so a malformed schedule never blocks the caller; the status manager
// logs this policy at the service layer.
func parseSchedule(date, clock string, fallback time.Time) time.Time {
	if date == "" {
		return fallback
	}
	if clock == "" {
		clock = "00:00"
	}
	if t, err := time.ParseInLocation(dateTimeLayout, date+" "+clock, time.UTC); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(dateTimeLayout+":05", date+" "+clock, time.UTC); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(dateLayout, date, time.UTC); err == nil {
		return t
	}
	return fallback
}

// ComputeStatus derives the coarse status and fine-grained sub_status of an
// event from its scheduling fields and the supplied clock. It is the single
// source of temporal truth: all lifecycle gating reads the sub_status this
// returns, never the raw timestamps.
func ComputeStatus(ev *models.Event, now time.Time) (models.EventStatus, models.EventSubStatus) {
	regStart := parseSchedule(ev.RegistrationStartDate, ev.RegistrationStartTime, now)
	regEnd := parseSchedule(ev.RegistrationEndDate, ev.RegistrationEndTime, now)
	start := parseSchedule(ev.StartDate, ev.StartTime, now)
	end := parseSchedule(ev.EndDate, ev.EndTime, now)
	certEnd := parseSchedule(ev.CertificateEndDate, ev.CertificateEndTime, now)

	switch {
	case now.Before(regStart):
		return models.EventUpcoming, models.SubStatusRegistrationNotStarted
	case now.Before(regEnd):
		return models.EventUpcoming, models.SubStatusRegistrationOpen
	case now.Before(start):
		return models.EventUpcoming, models.SubStatusRegistrationClosed
	case now.Before(end):
		return models.EventOngoing, models.SubStatusEventStarted
	case now.Before(certEnd):
		// Certificates open immediately once the event ends.
		return models.EventOngoing, models.SubStatusCertificateAvailable
	default:
		return models.EventCompleted, models.SubStatusEventCompleted
	}
}
