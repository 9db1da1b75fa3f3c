package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/events-api/api/swagger"
	"github.com/campushq/events-api/internal/handler"
	"github.com/campushq/events-api/internal/middleware"
	"github.com/campushq/events-api/internal/repository"
	"github.com/campushq/events-api/internal/service"
	"github.com/campushq/events-api/internal/store"
	"github.com/campushq/events-api/pkg/cache"
	"github.com/campushq/events-api/pkg/config"
	"github.com/campushq/events-api/pkg/database"
	"github.com/campushq/events-api/pkg/export"
	"github.com/campushq/events-api/pkg/logger"
	"github.com/campushq/events-api/pkg/mailer"
	corsmiddleware "github.com/campushq/events-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/events-api/pkg/middleware/requestid"
)

// @title Campus Events API
// @version 1.0.0
// @description Participation lifecycle engine for campus events
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	docStore := store.NewPostgres(db)
	if err := docStore.Migrate(context.Background()); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, event listing cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	studentRepo := repository.NewStudentRepository(docStore)
	eventRepo := repository.NewEventRepository(docStore)

	validate := validator.New()

	mailClient := mailer.New(cfg.Mailer, logr)
	notifySvc := service.NewNotificationService(mailClient, cfg.Notify, logr)
	notifySvc.Start(context.Background())
	defer notifySvc.Stop()

	metricsSvc := service.NewMetricsService()
	renderer := export.NewCertificateRenderer(cfg.Certificates.IssuerName, cfg.Certificates.SignatoryName)

	authSvc := service.NewAuthService(studentRepo, cfg.JWT, validate, logr)
	eventSvc := service.NewEventService(eventRepo, redisClient, cfg.Events.CacheTTL, validate, logr)
	registrationSvc := service.NewRegistrationService(studentRepo, eventRepo, notifySvc, metricsSvc,
		cfg.Lifecycle.AllowParticipantSelfLeave, validate, logr)
	attendanceSvc := service.NewAttendanceService(studentRepo, eventRepo, notifySvc, metricsSvc, logr)
	feedbackSvc := service.NewFeedbackService(studentRepo, eventRepo, notifySvc, metricsSvc, validate, logr)
	certificateSvc := service.NewCertificateService(studentRepo, eventRepo, notifySvc, metricsSvc, renderer, logr)
	teamSvc := service.NewTeamService(studentRepo, eventRepo, notifySvc, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	reconcileSvc := service.NewReconcileService(studentRepo, eventRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Event:        handler.NewEventHandler(eventSvc),
		Registration: handler.NewRegistrationHandler(registrationSvc),
		Attendance:   handler.NewAttendanceHandler(attendanceSvc),
		Feedback:     handler.NewFeedbackHandler(feedbackSvc),
		Certificate:  handler.NewCertificateHandler(certificateSvc),
		Team:         handler.NewTeamHandler(teamSvc),
		Student:      handler.NewStudentHandler(studentSvc),
		Reconcile:    handler.NewReconcileHandler(reconcileSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
