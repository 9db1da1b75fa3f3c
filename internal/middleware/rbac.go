package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/models"
	appErrors "github.com/campushq/events-api/pkg/errors"
	"github.com/campushq/events-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. "SELF" allows a
// student to act on their own enrollment number (the :enrollment_no param).
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.Claims)

		allowSelf := false
		allowedRoles := make(map[string]struct{})
		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[a] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if target := c.Param("enrollment_no"); target != "" && target == claims.EnrollmentNo {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
