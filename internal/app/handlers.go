package app

import (
	"github.com/desplega-ai/mood/internal/http"
	httpH "github.com/desplega-ai/mood/internal/http/handlers"
	httpMW "github.com/desplega-ai/mood/internal/http/middleware"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	Founder *httpH.FounderHandler
	Mood    *httpH.MoodHandler
	Cron    *httpH.CronHandler
	Debug   *httpH.DebugHandler
}

func wireHandlers(log *logger.Logger, s Services, c Clients, ping httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(ping),
		Auth:    httpH.NewAuthHandler(s.Access),
		Founder: httpH.NewFounderHandler(s.Founders),
		Mood:    httpH.NewMoodHandler(s.Moods),
		Cron:    httpH.NewCronHandler(log, s.MoodCheck),
		Debug:   httpH.NewDebugHandler(log, c.Mailbox),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Access),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, m Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.Otel.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		CronSecret:     cfg.CronSecret,
		AuthMiddleware: m.Auth,
		AuthHandler:    h.Auth,
		FounderHandler: h.Founder,
		MoodHandler:    h.Mood,
		CronHandler:    h.Cron,
		DebugHandler:   h.Debug,
		HealthHandler:  h.Health,
	})
}
