package database

import (
	"path/filepath"
	"testing"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Expected error for empty database path")
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected clean version 1, got %d (dirty=%v)", version, dirty)
	}

	version, _, err = RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error on second run, got: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var enabled int
	if err := db.Get(&enabled, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if enabled != 1 {
		t.Errorf("Expected foreign keys to be enabled, got %d", enabled)
	}
}
