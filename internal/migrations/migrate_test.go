package migrations

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestRunMigrationsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf.db")
	dir := filepath.Join("..", "..", "migrations")

	if err := RunMigrations("sqlite3", path, dir); err != nil {
		t.Fatal(err)
	}
	// second run is a no-op
	if err := RunMigrations("sqlite3", path, dir); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, table := range []string{"game_sessions", "hole_scores", migrationsTable} {
		if !tableExists(db, "sqlite3", table) {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestRunMigrationsRejectsUnknownDriver(t *testing.T) {
	if err := RunMigrations("mysql", "root@/golf", ""); err == nil {
		t.Error("expected error")
	}
	if err := RunMigrations("sqlite3", "", ""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000001_init.up.sql", "000007_scores.up.sql", "notes.txt"} {
		os.WriteFile(filepath.Join(dir, name), nil, 0o644)
	}
	if got := findLatestMigrationVersion(dir); got != 7 {
		t.Errorf("latest = %d, want 7", got)
	}
}
