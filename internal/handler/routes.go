package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushq/events-api/internal/middleware"
	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth         *AuthHandler
	Event        *EventHandler
	Registration *RegistrationHandler
	Attendance   *AttendanceHandler
	Feedback     *FeedbackHandler
	Certificate  *CertificateHandler
	Team         *TeamHandler
	Student      *StudentHandler
	Reconcile    *ReconcileHandler
}

// RegisterRoutes mounts the API under the configured prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/signup", h.Auth.Signup)
		auth.GET("/me", middleware.JWT(authService), h.Auth.Me)
	}

	events := api.Group("/events")
	{
		events.GET("", h.Event.List)
		events.GET("/:event_id", h.Event.Get)
		events.POST("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), h.Event.Create)

		protected := events.Group("", middleware.JWT(authService))
		{
			protected.POST("/:event_id/register", h.Registration.Register)
			protected.POST("/:event_id/register/team", h.Registration.RegisterTeam)
			protected.DELETE("/:event_id/registration", h.Registration.Cancel)
			protected.POST("/:event_id/payment", h.Registration.CompletePayment)
			protected.GET("/:event_id/teams/:team_id", h.Registration.TeamRoster)

			protected.POST("/:event_id/teams/:team_id/participants", h.Team.AddParticipant)
			protected.DELETE("/:event_id/teams/:team_id/participants/:enrollment_no", h.Team.RemoveParticipant)
			protected.PATCH("/:event_id/teams/:team_id/participants/:enrollment_no", h.Team.UpdateParticipant)

			protected.POST("/:event_id/attendance", middleware.RequireRoles(models.RoleAdmin), h.Attendance.Mark)
			protected.POST("/:event_id/feedback", h.Feedback.Submit)
			protected.POST("/:event_id/certificate", h.Certificate.Issue)
			protected.GET("/:event_id/certificate", h.Certificate.Download)
		}
	}

	students := api.Group("/students", middleware.JWT(authService))
	{
		students.GET("/me", h.Student.Profile)
		students.GET("/me/participations", h.Student.Participations)
	}

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/reconcile", h.Reconcile.ReportAll)
		admin.GET("/reconcile/:event_id", h.Reconcile.Report)
		admin.POST("/reconcile/:event_id/repair", h.Reconcile.Repair)
	}
}
