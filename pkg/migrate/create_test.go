package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateSQLMigrationBumpsPastLatest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20300101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	path, err := createSQLMigration(dir, "add index", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := filepath.Base(path); got != "20300101000001_add_index.sql" {
		t.Fatalf("expected version bumped past latest, got %s", got)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("  Add Order-Notes!! "); got != "add_order_notes" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := sanitizeName("***"); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}
