package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/service"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

// CertificateHandler wires HTTP endpoints to the certificate service.
type CertificateHandler struct {
	service *service.CertificateService
}

// NewCertificateHandler creates a new handler.
func NewCertificateHandler(svc *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{service: svc}
}

// Issue godoc
// @Summary Issue certificate
// @Description Issue the participation certificate once registration, attendance, and feedback are complete
// @Tags Certificates
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{event_id}/certificate [post]
func (h *CertificateHandler) Issue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	outcome, err := h.service.Issue(c.Request.Context(), claims.EnrollmentNo, c.Param("event_id"))
	respondOutcome(c, outcome, err, http.StatusCreated)
}

// Download godoc
// @Summary Download certificate
// @Description Download the issued certificate as PDF
// @Tags Certificates
// @Produce application/pdf
// @Param event_id path string true "Event ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /events/{event_id}/certificate [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pdf, certificateID, err := h.service.Download(c.Request.Context(), claims.EnrollmentNo, c.Param("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", certificateID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
