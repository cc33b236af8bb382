package db

import (
	"path/filepath"
	"testing"

	"github.com/desplega-ai/mood/internal/platform/logger"
)

func TestDialectorSelection(t *testing.T) {
	if _, d := (Config{URL: "sqlite://file.db"}).dialector(); d != "sqlite" {
		t.Fatalf("expected sqlite, got %s", d)
	}
	if _, d := (Config{Host: "h", Port: "5432", User: "u", Name: "n"}).dialector(); d != "postgres" {
		t.Fatalf("expected postgres, got %s", d)
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mood.db")
	svc, err := Open(log, Config{URL: "sqlite://" + path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer svc.Close()
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"api_key", "founder", "mood_entry"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("table %s missing", table)
		}
	}
}
