package database

import (
	"path/filepath"
	"testing"
)

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect("mysql", "root@/golf"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect("sqlite3", filepath.Join(t.TempDir(), "golf.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var one int
	if err := db.Get(&one, "SELECT 1"); err != nil || one != 1 {
		t.Errorf("SELECT 1 = %d, %v", one, err)
	}
}
