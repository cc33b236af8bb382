package cli

import (
	"fmt"

	"github.com/desplega-ai/mood/internal/app"
	"github.com/desplega-ai/mood/internal/data/db"
	"github.com/desplega-ai/mood/internal/platform/logger"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(c *Context) error {
	log, svc, err := openDB()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer svc.Close()

	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("Migrations applied", "dialect", svc.Dialect())
	return nil
}

func openDB() (*logger.Logger, *db.Service, error) {
	cfg := app.LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	svc, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("init db: %w", err)
	}
	return log, svc, nil
}
