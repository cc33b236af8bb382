package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/desplega-ai/mood/internal/http/handlers"
	httpMW "github.com/desplega-ai/mood/internal/http/middleware"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	CronSecret  string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler    *httpH.AuthHandler
	FounderHandler *httpH.FounderHandler
	MoodHandler    *httpH.MoodHandler
	CronHandler    *httpH.CronHandler
	DebugHandler   *httpH.DebugHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.AuthHandler != nil {
			api.POST("/auth/validate", cfg.AuthHandler.Validate)
			api.POST("/request-access", cfg.AuthHandler.RequestAccess)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAPIKey())
		}

		// Settings
		if cfg.AuthHandler != nil {
			protected.GET("/settings/recurrence", cfg.AuthHandler.GetRecurrence)
			protected.PATCH("/settings/recurrence", cfg.AuthHandler.SetRecurrence)
		}

		// Founders
		if cfg.FounderHandler != nil {
			protected.GET("/founders", cfg.FounderHandler.List)
			protected.POST("/founders", cfg.FounderHandler.Create)
			protected.PATCH("/founders/:id", cfg.FounderHandler.Update)
			protected.DELETE("/founders/:id", cfg.FounderHandler.Delete)
		}

		// Mood
		if cfg.MoodHandler != nil {
			protected.GET("/mood", cfg.MoodHandler.List)
		}
	}

	cron := api.Group("/")
	{
		cron.Use(httpMW.RequireCronSecret(cfg.CronSecret))

		if cfg.CronHandler != nil {
			cron.GET("/cron/process-email-replies", cfg.CronHandler.ProcessReplies)
			cron.POST("/cron/process-email-replies", cfg.CronHandler.ProcessReplies)
			cron.GET("/cron/send-morning-emails", cfg.CronHandler.SendMorning)
			cron.GET("/cron/send-afternoon-emails", cfg.CronHandler.SendAfternoon)
			cron.POST("/test/process-mood", cfg.CronHandler.ProcessManual)
		}

		// Mailbox diagnostics
		if cfg.DebugHandler != nil {
			cron.GET("/debug/mailbox/folders", cfg.DebugHandler.Folders)
			cron.GET("/debug/mailbox/unseen", cfg.DebugHandler.Unseen)
		}
	}

	return r
}
