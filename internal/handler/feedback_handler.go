package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/service"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

// FeedbackHandler wires HTTP endpoints to the feedback service.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler creates a new handler.
func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// Submit godoc
// @Summary Submit feedback
// @Description Submit feedback for an attended event. Opens once certificates become available.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param payload body service.SubmitFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{event_id}/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	outcome, err := h.service.Submit(c.Request.Context(), claims.EnrollmentNo, c.Param("event_id"), req)
	respondOutcome(c, outcome, err, http.StatusCreated)
}
