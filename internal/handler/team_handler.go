package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/service"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

// TeamHandler wires HTTP endpoints to the team roster service.
type TeamHandler struct {
	service *service.TeamService
}

// NewTeamHandler creates a new handler.
func NewTeamHandler(svc *service.TeamService) *TeamHandler {
	return &TeamHandler{service: svc}
}

// AddParticipant godoc
// @Summary Add team member
// @Description Add a student to the caller's team while registration is open (team leader only)
// @Tags Teams
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param team_id path string true "Team registration ID"
// @Param payload body object true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /events/{event_id}/teams/{team_id}/participants [post]
func (h *TeamHandler) AddParticipant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		EnrollmentNo string `json:"enrollment_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid member payload"))
		return
	}

	outcome, err := h.service.AddParticipant(c.Request.Context(),
		claims.EnrollmentNo, c.Param("event_id"), c.Param("team_id"), payload.EnrollmentNo)
	respondOutcome(c, outcome, err, http.StatusCreated)
}

// RemoveParticipant godoc
// @Summary Remove team member
// @Description Remove a member from the caller's team while registration is open (team leader only)
// @Tags Teams
// @Produce json
// @Param event_id path string true "Event ID"
// @Param team_id path string true "Team registration ID"
// @Param enrollment_no path string true "Member enrollment number"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /events/{event_id}/teams/{team_id}/participants/{enrollment_no} [delete]
func (h *TeamHandler) RemoveParticipant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	outcome, err := h.service.RemoveParticipant(c.Request.Context(),
		claims.EnrollmentNo, c.Param("event_id"), c.Param("team_id"), c.Param("enrollment_no"))
	respondOutcome(c, outcome, err, http.StatusOK)
}

// UpdateParticipant godoc
// @Summary Update member contact details
// @Description Patch the contact details in a member's registration snapshot (team leader only)
// @Tags Teams
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param team_id path string true "Team registration ID"
// @Param enrollment_no path string true "Member enrollment number"
// @Param payload body service.UpdateContactRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{event_id}/teams/{team_id}/participants/{enrollment_no} [patch]
func (h *TeamHandler) UpdateParticipant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload service.UpdateContactRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}

	outcome, err := h.service.UpdateParticipantContact(c.Request.Context(),
		claims.EnrollmentNo, c.Param("event_id"), c.Param("team_id"), c.Param("enrollment_no"), payload)
	respondOutcome(c, outcome, err, http.StatusOK)
}
