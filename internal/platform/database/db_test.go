package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const migrationsDir = "../../../migrations"

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "child-health.db")

	db, err := Open(context.Background(), "sqlite", DialectConfig{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}

	var fk int
	if err := db.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestSQLitePrepare_SkipsSpecialPaths(t *testing.T) {
	d := NewSQLiteDialect()
	for _, p := range []string{"", ":memory:", "file:test.db?mode=memory", "local.db"} {
		if err := d.Prepare(DialectConfig{Path: p}); err != nil {
			t.Errorf("Prepare(%q): %v", p, err)
		}
	}
}

func TestMigrate_UpThenDown(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", DialectConfig{Path: filepath.Join(t.TempDir(), "m.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	changed, err := db.Migrate(migrationsDir, true)
	if err != nil || !changed {
		t.Fatalf("first up: changed=%v err=%v", changed, err)
	}
	changed, err = db.Migrate(migrationsDir, true)
	if err != nil || changed {
		t.Errorf("second up: changed=%v err=%v", changed, err)
	}

	if _, err := db.ExecContext(ctx, "SELECT count(*) FROM child_profiles"); err != nil {
		t.Errorf("child_profiles missing after up: %v", err)
	}

	changed, err = db.Migrate(migrationsDir, false)
	if err != nil || !changed {
		t.Fatalf("down: changed=%v err=%v", changed, err)
	}
	if _, err := db.ExecContext(ctx, "SELECT count(*) FROM child_profiles"); err == nil {
		t.Error("child_profiles should be dropped after down")
	}
}
