package ops

import (
	"database/sql"
	"testing"

	"github.com/swapavan11/apricity-notebook/internal/db"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestGenerateULID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := generateULID()
		if err != nil {
			t.Fatalf("generateULID failed: %v", err)
		}
		if len(id) != 26 {
			t.Errorf("ULID length = %d, want 26", len(id))
		}
		if seen[id] {
			t.Errorf("duplicate ULID: %s", id)
		}
		seen[id] = true
	}
}

func TestCleanOptionalString(t *testing.T) {
	if got := cleanOptionalString(nil); got != nil {
		t.Errorf("cleanOptionalString(nil) = %v, want nil", got)
	}
	if got := cleanOptionalString(stringPtr("  ")); got != nil {
		t.Errorf("cleanOptionalString(blank) = %v, want nil", got)
	}
	if got := cleanOptionalString(stringPtr(" doc-1 ")); got == nil || *got != "doc-1" {
		t.Errorf("cleanOptionalString(padded) = %v, want doc-1", got)
	}
}
