package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/middleware"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/service"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.Claims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.Claims)
	if !ok {
		return nil
	}
	return claims
}

// respondOutcome renders a lifecycle transition result. Granted outcomes use
// the given success status; rejections map their taxonomy code to the
// matching HTTP status while keeping the outcome (with any existing
// identifier) in the payload.
func respondOutcome(c *gin.Context, outcome service.Outcome, err error, successStatus int) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if outcome.OK {
		response.JSON(c, successStatus, outcome, nil)
		return
	}
	appErr := appErrors.ByCode(outcome.Code, outcome.Message)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, response.Envelope{Data: outcome, Error: appErr})
}
