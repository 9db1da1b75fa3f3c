package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// ReconcileService compares the event-side registration indexes against the
// authoritative student documents and, on request, rebuilds them. Detection
// never mutates; repair is a separate operator-triggered write so drift
// reports stay safe to run on a live system.
type ReconcileService struct {
	students studentStore
	events   eventStore
	logger   *zap.Logger
}

// NewReconcileService constructs ReconcileService.
func NewReconcileService(students studentStore, events eventStore, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{students: students, events: events, logger: logger}
}

// EventReport audits one event against the student documents.
func (s *ReconcileService) EventReport(ctx context.Context, eventID string) (lifecycle.DriftReport, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return lifecycle.DriftReport{}, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return lifecycle.DriftReport{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
	}
	students, err := s.students.All(ctx)
	if err != nil {
		return lifecycle.DriftReport{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to scan students")
	}
	return lifecycle.DetectDrift(ev, students), nil
}

// ReportAll audits every event. Clean events are omitted from the result.
func (s *ReconcileService) ReportAll(ctx context.Context) ([]lifecycle.DriftReport, error) {
	events, err := s.events.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list events")
	}
	students, err := s.students.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to scan students")
	}

	reports := make([]lifecycle.DriftReport, 0)
	for i := range events {
		report := lifecycle.DetectDrift(&events[i], students)
		if !report.Clean() {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// RepairEvent rebuilds the event's registration indexes from the student
// documents and overwrites the stored projection. Returns the drift that was
// present before the repair.
func (s *ReconcileService) RepairEvent(ctx context.Context, eventID string) (lifecycle.DriftReport, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return lifecycle.DriftReport{}, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return lifecycle.DriftReport{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
	}
	students, err := s.students.All(ctx)
	if err != nil {
		return lifecycle.DriftReport{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to scan students")
	}

	report := lifecycle.DetectDrift(ev, students)
	if report.Clean() {
		return report, nil
	}

	rebuilt := lifecycle.RebuildEventIndex(eventID, students)
	if err := s.events.ReplaceIndexes(ctx, eventID, rebuilt.Registrations, rebuilt.TeamRegistrations); err != nil {
		return report, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to write rebuilt indexes")
	}

	s.logger.Sugar().Infow("event indexes rebuilt",
		"event_id", eventID,
		"orphan_registrations", len(report.OrphanRegistrations),
		"missing_registrations", len(report.MissingRegistrations),
		"orphan_team_refs", len(report.OrphanTeamRefs),
		"dangling_team_records", len(report.DanglingTeamRecords))
	return report, nil
}
