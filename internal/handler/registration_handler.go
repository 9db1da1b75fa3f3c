package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/service"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

// RegistrationHandler wires HTTP endpoints to the registration service.
type RegistrationHandler struct {
	service *service.RegistrationService
}

// NewRegistrationHandler creates a new handler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Register godoc
// @Summary Register for an event
// @Description Register the authenticated student for an individual event. Idempotent: a repeat call returns the original registration id.
// @Tags Registrations
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /events/{event_id}/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	outcome, err := h.service.RegisterIndividual(c.Request.Context(), claims.EnrollmentNo, c.Param("event_id"))
	respondOutcome(c, outcome, err, http.StatusCreated)
}

// RegisterTeam godoc
// @Summary Register a team
// @Description Register the authenticated student as team leader with the given participants. Reports every missing or already registered member in one response.
// @Tags Registrations
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param payload body object true "Team payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /events/{event_id}/register/team [post]
func (h *RegistrationHandler) RegisterTeam(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		TeamName     string   `json:"team_name"`
		Participants []string `json:"participants"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid team payload"))
		return
	}

	outcome, err := h.service.RegisterTeam(c.Request.Context(), service.TeamRegisterRequest{
		EventID:          c.Param("event_id"),
		LeaderEnrollment: claims.EnrollmentNo,
		TeamName:         payload.TeamName,
		Participants:     payload.Participants,
	})
	respondOutcome(c, outcome, err, http.StatusCreated)
}

// Cancel godoc
// @Summary Cancel registration
// @Description Cancel the authenticated student's registration. A team leader cancelling dissolves the whole team.
// @Tags Registrations
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events/{event_id}/registration [delete]
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	outcome, err := h.service.Cancel(c.Request.Context(), claims.EnrollmentNo, c.Param("event_id"))
	respondOutcome(c, outcome, err, http.StatusOK)
}

// CompletePayment godoc
// @Summary Complete payment
// @Description Mark the authenticated student's pending payment as completed
// @Tags Registrations
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events/{event_id}/payment [post]
func (h *RegistrationHandler) CompletePayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	outcome, err := h.service.CompletePayment(c.Request.Context(), claims.EnrollmentNo, c.Param("event_id"))
	respondOutcome(c, outcome, err, http.StatusOK)
}

// TeamRoster godoc
// @Summary Get team roster
// @Description Get one team registration's roster
// @Tags Registrations
// @Produce json
// @Param event_id path string true "Event ID"
// @Param team_id path string true "Team registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{event_id}/teams/{team_id} [get]
func (h *RegistrationHandler) TeamRoster(c *gin.Context) {
	team, err := h.service.TeamRoster(c.Request.Context(), c.Param("event_id"), c.Param("team_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}
