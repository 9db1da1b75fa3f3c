package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campushq/events-api/internal/lifecycle"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

const eventListCachePrefix = "events:list:"

// EventService manages event metadata and derives the time-based status
// pair on every read. Stored status values are never trusted; they are
// recomputed from the schedule and written back best-effort.
type EventService struct {
	events    eventStore
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService constructs EventService. The cache client may be nil, in
// which case listings always hit the store.
func NewEventService(events eventStore, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:    events,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// decorate recomputes the derived status pair and persists it when it moved,
// so admin-side queries against stored values stay roughly current. The
// write is best effort; gating always uses the freshly computed value.
func (s *EventService) decorate(ctx context.Context, ev *models.Event) {
	status, subStatus := lifecycle.ComputeStatus(ev, s.now().UTC())
	if ev.Status == status && ev.SubStatus == subStatus {
		return
	}
	ev.Status = status
	ev.SubStatus = subStatus
	if err := s.events.SetDerivedStatus(ctx, ev.EventID, status, subStatus); err != nil {
		s.logger.Sugar().Warnw("failed to persist derived event status", "event_id", ev.EventID, "error", err)
	}
}

// Get loads one event with fresh derived status.
func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load event")
	}
	s.decorate(ctx, ev)
	return ev, nil
}

// ListAvailable returns events filtered by coarse status or fine sub_status.
// An empty phase returns everything. Results are cached briefly per phase.
func (s *EventService) ListAvailable(ctx context.Context, phase string) ([]models.Event, error) {
	phase = strings.ToLower(strings.TrimSpace(phase))
	cacheKey := eventListCachePrefix + phase

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var events []models.Event
			if err := json.Unmarshal(cached, &events); err == nil {
				return events, nil
			}
		}
	}

	all, err := s.events.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list events")
	}

	events := make([]models.Event, 0, len(all))
	for i := range all {
		ev := &all[i]
		s.decorate(ctx, ev)
		if phase == "" || phase == string(ev.Status) || phase == string(ev.SubStatus) {
			events = append(events, *ev)
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(events); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Sugar().Debugw("event list cache write failed", "error", err)
			}
		}
	}
	return events, nil
}

// CreateEventRequest describes the admin event-creation payload.
type CreateEventRequest struct {
	EventName   string `json:"event_name" validate:"required"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Organizer   string `json:"organizer"`

	RegistrationStartDate string `json:"registration_start_date" validate:"required"`
	RegistrationStartTime string `json:"registration_start_time"`
	RegistrationEndDate   string `json:"registration_end_date" validate:"required"`
	RegistrationEndTime   string `json:"registration_end_time"`
	StartDate             string `json:"start_date" validate:"required"`
	StartTime             string `json:"start_time"`
	EndDate               string `json:"end_date" validate:"required"`
	EndTime               string `json:"end_time"`
	CertificateEndDate    string `json:"certificate_end_date" validate:"required"`
	CertificateEndTime    string `json:"certificate_end_time"`

	RegistrationMode models.RegistrationMode `json:"registration_mode" validate:"required,oneof=individual team"`
	RegistrationType models.FeeType          `json:"registration_type" validate:"required,oneof=free paid"`
	RegistrationFee  float64                 `json:"registration_fee"`
	TeamSizeMin      int                     `json:"team_size_min"`
	TeamSizeMax      int                     `json:"team_size_max"`
	MaxParticipants  int                     `json:"max_participants"`
}

// Create inserts a new event.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.RegistrationMode == models.ModeTeam && req.TeamSizeMin > req.TeamSizeMax && req.TeamSizeMax > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "team_size_min cannot exceed team_size_max")
	}

	ev := &models.Event{
		EventID:     strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12],
		EventName:   req.EventName,
		Description: req.Description,
		Venue:       req.Venue,
		Organizer:   req.Organizer,

		RegistrationStartDate: req.RegistrationStartDate,
		RegistrationStartTime: req.RegistrationStartTime,
		RegistrationEndDate:   req.RegistrationEndDate,
		RegistrationEndTime:   req.RegistrationEndTime,
		StartDate:             req.StartDate,
		StartTime:             req.StartTime,
		EndDate:               req.EndDate,
		EndTime:               req.EndTime,
		CertificateEndDate:    req.CertificateEndDate,
		CertificateEndTime:    req.CertificateEndTime,

		RegistrationMode: req.RegistrationMode,
		RegistrationType: req.RegistrationType,
		RegistrationFee:  req.RegistrationFee,
		TeamSizeMin:      req.TeamSizeMin,
		TeamSizeMax:      req.TeamSizeMax,
		MaxParticipants:  req.MaxParticipants,
	}
	ev.Status, ev.SubStatus = lifecycle.ComputeStatus(ev, s.now().UTC())

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create event")
	}
	s.invalidateListCache(ctx)
	return ev, nil
}

func (s *EventService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{eventListCachePrefix}
	for _, phase := range []string{
		string(models.EventUpcoming), string(models.EventOngoing), string(models.EventCompleted),
		string(models.SubStatusRegistrationNotStarted), string(models.SubStatusRegistrationOpen),
		string(models.SubStatusRegistrationClosed), string(models.SubStatusEventStarted),
		string(models.SubStatusEventEnded), string(models.SubStatusCertificateAvailable),
		string(models.SubStatusEventCompleted),
	} {
		keys = append(keys, eventListCachePrefix+phase)
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Sugar().Debugw("event list cache invalidation failed", "error", err)
	}
}
