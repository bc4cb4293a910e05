package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/ad/go-telegram-blog/internal/db"
	"github.com/ad/go-telegram-blog/internal/fsm"
	"github.com/ad/go-telegram-blog/internal/models"
	_ "modernc.org/sqlite"
)

func TestComponentInitialization(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blogbot.db")
	defer os.Remove(dbPath)

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	// Schema init must be idempotent across restarts.
	if err := db.InitSchema(sqlDB); err != nil {
		t.Fatalf("Second InitSchema failed: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	draftRepo := db.NewDraftRepository(dbQueue)
	pubRepo := db.NewPublicationRepository(dbQueue)

	if err := draftRepo.Save(&models.Draft{UserID: 1, Step: fsm.StepTitle}); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	draft, err := draftRepo.Get(1)
	if err != nil || draft == nil {
		t.Fatalf("Failed to read draft back: %v", err)
	}

	count, err := pubRepo.CountByUser(1)
	if err != nil {
		t.Fatalf("Failed to count publications: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty publication log, got %d", count)
	}
}
