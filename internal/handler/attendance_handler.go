package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/service"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Description Mark a student present or absent during the event window (admin only)
// @Tags Attendance
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param payload body object true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events/{event_id}/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var payload struct {
		EnrollmentNo string                  `json:"enrollment_no" binding:"required"`
		Status       models.AttendanceStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	outcome, err := h.service.Mark(c.Request.Context(), payload.EnrollmentNo, c.Param("event_id"), payload.Status)
	respondOutcome(c, outcome, err, http.StatusCreated)
}
