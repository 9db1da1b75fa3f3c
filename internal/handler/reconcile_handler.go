package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/service"
	"github.com/campushq/events-api/pkg/response"
)

// ReconcileHandler wires HTTP endpoints to the reconciliation service.
type ReconcileHandler struct {
	service *service.ReconcileService
}

// NewReconcileHandler creates a new handler.
func NewReconcileHandler(svc *service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{service: svc}
}

// ReportAll godoc
// @Summary Audit all events
// @Description Report drift between event indexes and student documents for every event (admin only)
// @Tags Reconciliation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/reconcile [get]
func (h *ReconcileHandler) ReportAll(c *gin.Context) {
	reports, err := h.service.ReportAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Report godoc
// @Summary Audit one event
// @Description Report drift for one event (admin only)
// @Tags Reconciliation
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/reconcile/{event_id} [get]
func (h *ReconcileHandler) Report(c *gin.Context) {
	report, err := h.service.EventReport(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Repair godoc
// @Summary Repair one event
// @Description Rebuild the event's registration indexes from the student documents (admin only)
// @Tags Reconciliation
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/reconcile/{event_id}/repair [post]
func (h *ReconcileHandler) Repair(c *gin.Context) {
	report, err := h.service.RepairEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
