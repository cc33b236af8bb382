package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desplega-ai/mood/internal/data/db"
	"github.com/desplega-ai/mood/internal/http"
	"github.com/desplega-ai/mood/internal/observability"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients

	otelShutdown func(context.Context) error
}

// New builds every dependency the server and the CLI jobs share. The caller
// owns Close.
func New() (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	dbService, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	theDB := dbService.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	svcs := wireServices(theDB, log, cfg, reposet, clients)
	hs := wireHandlers(log, svcs, clients, dbService.Ping)
	mw := wireMiddleware(log, svcs)

	return &App{
		Log:          log,
		DB:           dbService,
		Server:       wireRouter(log, cfg, hs, mw),
		Cfg:          cfg,
		Repos:        reposet,
		Services:     svcs,
		Clients:      clients,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
