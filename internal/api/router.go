package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/hiretrack/hiretrack/internal/api/v1"
	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/rest/middleware"
	"github.com/hiretrack/hiretrack/internal/service"
	"github.com/hiretrack/hiretrack/internal/types"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Applicant    *v1.ApplicantHandler
	Resume       *v1.ResumeHandler
	Interview    *v1.InterviewHandler
	Notification *v1.NotificationHandler
	Sync         *v1.SyncHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryScopeMiddleware,
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	applicants := router.Group("/applicants")
	{
		applicants.GET("", handlers.Applicant.ListApplicants)
		applicants.GET("/:id", handlers.Applicant.GetApplicant)
		applicants.POST("/:id/transition", handlers.Applicant.Transition)
		applicants.PUT("/:id/onboarding", handlers.Applicant.UpdateOnboarding)
		applicants.GET("/:id/interview", handlers.Interview.ViewInterview)
		applicants.GET("/:id/resume", handlers.Resume.DownloadResume)
	}

	sync := router.Group("/sync")
	{
		sync.POST("/refresh", handlers.Sync.Refresh)
		sync.POST("/focus", handlers.Sync.Focus)
		sync.POST("/changed", handlers.Sync.Changed)
	}

	router.GET("/toasts", handlers.Sync.ListToasts)

	interviews := router.Group("/interviews")
	{
		interviews.GET("/session", handlers.Interview.GetSession)
		interviews.POST("/session", handlers.Interview.OpenSession)
		interviews.DELETE("/session", handlers.Interview.CancelSession)
		interviews.POST("/session/toggle", handlers.Interview.ToggleSelection)
		interviews.POST("/session/confirm", handlers.Interview.ConfirmSelection)
		interviews.PUT("/session/form", handlers.Interview.UpdateForm)
		interviews.POST("/session/submit", handlers.Interview.Submit)
		interviews.POST("/decision", handlers.Interview.Decide)
	}

	notifications := router.Group("/notifications")
	{
		notifications.GET("", handlers.Notification.ListNotifications)
		notifications.GET("/interviews", handlers.Notification.ListInterviewDetails)
		notifications.POST("/:id/read", handlers.Notification.MarkRead)
	}
}

// NewHandlers builds every v1 handler over the service layer
func NewHandlers(
	logger *logger.Logger,
	sync service.ApplicantSyncService,
	workflow service.WorkflowService,
	scheduler service.SchedulerService,
	notifications service.NotificationService,
	resume service.ResumeService,
	controller service.SyncController,
	toasts *service.ToastLog,
) Handlers {
	return Handlers{
		Health:       v1.NewHealthHandler(controller, logger),
		Applicant:    v1.NewApplicantHandler(sync, workflow, logger),
		Resume:       v1.NewResumeHandler(resume, logger),
		Interview:    v1.NewInterviewHandler(scheduler, sync, logger),
		Notification: v1.NewNotificationHandler(notifications, logger),
		Sync:         v1.NewSyncHandler(controller, toasts, logger),
	}
}
