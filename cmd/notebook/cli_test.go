package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/swapavan11/apricity-notebook/internal/config"
	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// runApp runs the CLI app with stdout captured, returning the output.
func runApp(t *testing.T, app *cli.App, args []string) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(args)

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestParseDuration tests the parseDuration helper function.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{
			name:     "valid days",
			input:    "7d",
			expected: 7,
		},
		{
			name:     "zero days",
			input:    "0d",
			expected: 0,
		},
		{
			name:        "negative days",
			input:       "-7d",
			expectError: true,
		},
		{
			name:        "no suffix",
			input:       "7",
			expectError: true,
		},
		{
			name:        "wrong suffix",
			input:       "7h",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// TestCLICreateFetch tests the create and fetch commands.
func TestCLICreateFetch(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	app := newCLIApp(database, cfg, t.TempDir())

	out, err := runApp(t, app, []string{"notebook", "create", "Physics Notes"})
	if err != nil {
		t.Fatalf("create command failed: %v", err)
	}

	var created ops.CreateOutput
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if created.ID == "" {
		t.Error("expected non-empty ID")
	}
	if created.Title != "Physics Notes" {
		t.Errorf("expected title %q, got %q", "Physics Notes", created.Title)
	}

	out, err = runApp(t, app, []string{"notebook", "fetch", created.ID})
	if err != nil {
		t.Fatalf("fetch command failed: %v", err)
	}

	var fetched ops.FetchOutput
	if err := json.Unmarshal([]byte(out), &fetched); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if fetched.ID != created.ID {
		t.Errorf("expected ID=%s, got %s", created.ID, fetched.ID)
	}
}

// TestCLICreateDuplicate tests the title collision error path.
func TestCLICreateDuplicate(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	app := newCLIApp(database, cfg, t.TempDir())

	if _, err := runApp(t, app, []string{"notebook", "create", "Chemistry"}); err != nil {
		t.Fatalf("create command failed: %v", err)
	}

	_, err := runApp(t, app, []string{"notebook", "create", "chemistry"})
	if err == nil {
		t.Fatal("expected duplicate title error, got nil")
	}
	if !strings.Contains(err.Error(), "CONFLICT") {
		t.Errorf("expected CONFLICT in error, got %q", err.Error())
	}
}

// TestCLISave tests the save command with piped content.
func TestCLISave(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	created, err := ops.Create(database, ops.CreateInput{Title: "Save Test"})
	if err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}

	app := newCLIApp(database, cfg, t.TempDir())

	// Pipe content markup via stdin
	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR
	go func() {
		_, _ = stdinW.WriteString("<p>Newton's <b>second</b> law</p>")
		stdinW.Close()
	}()

	out, err := runApp(t, app, []string{"notebook", "save", created.ID})
	os.Stdin = oldStdin

	if err != nil {
		t.Fatalf("save command failed: %v", err)
	}

	var saved ops.SaveOutput
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if saved.ID != created.ID {
		t.Errorf("expected ID=%s, got %s", created.ID, saved.ID)
	}

	fetched, err := ops.Fetch(database, ops.FetchInput{ID: created.ID})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(fetched.Content, "second") {
		t.Errorf("expected saved content, got %q", fetched.Content)
	}
}

// TestCLIImport tests the import command.
func TestCLIImport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "mitosis.md")
	if err := os.WriteFile(path, []byte("# Mitosis\n\nProphase, then metaphase.\n"), 0o644); err != nil {
		t.Fatalf("writing markdown file: %v", err)
	}

	app := newCLIApp(database, cfg, dir)

	out, err := runApp(t, app, []string{"notebook", "import", "--path=" + path})
	if err != nil {
		t.Fatalf("import command failed: %v", err)
	}

	var imported ops.ImportMarkdownOutput
	if err := json.Unmarshal([]byte(out), &imported); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if imported.Title != "mitosis" {
		t.Errorf("expected title mitosis, got %q", imported.Title)
	}

	fetched, err := ops.Fetch(database, ops.FetchInput{ID: imported.ID})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(fetched.Content, "metaphase") {
		t.Errorf("expected imported content, got %q", fetched.Content)
	}
}

// TestCLIList tests the list command.
func TestCLIList(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		if _, err := ops.Create(database, ops.CreateInput{Title: title}); err != nil {
			t.Fatalf("failed to create test note: %v", err)
		}
	}

	app := newCLIApp(database, cfg, t.TempDir())

	out, err := runApp(t, app, []string{"notebook", "list", "--limit=2"})
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	var listed ops.ListOutput
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(listed.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(listed.Items))
	}
	if !listed.Pagination.HasMore {
		t.Error("expected has_more=true")
	}
}

// TestCLIRenameDeleteLatest tests rename, delete and latest together.
func TestCLIRenameDeleteLatest(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	created, err := ops.Create(database, ops.CreateInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}

	app := newCLIApp(database, cfg, t.TempDir())

	out, err := runApp(t, app, []string{"notebook", "rename", created.ID, "Final"})
	if err != nil {
		t.Fatalf("rename command failed: %v", err)
	}
	var renamed ops.RenameOutput
	if err := json.Unmarshal([]byte(out), &renamed); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if renamed.Title != "Final" {
		t.Errorf("expected title Final, got %q", renamed.Title)
	}

	out, err = runApp(t, app, []string{"notebook", "latest"})
	if err != nil {
		t.Fatalf("latest command failed: %v", err)
	}
	var latest ops.LatestOutput
	if err := json.Unmarshal([]byte(out), &latest); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if latest.Item == nil || latest.Item.ID != created.ID {
		t.Fatalf("expected latest item %s, got %+v", created.ID, latest.Item)
	}

	if _, err := runApp(t, app, []string{"notebook", "delete", created.ID}); err != nil {
		t.Fatalf("delete command failed: %v", err)
	}

	out, err = runApp(t, app, []string{"notebook", "latest"})
	if err != nil {
		t.Fatalf("latest command failed: %v", err)
	}
	latest = ops.LatestOutput{}
	if err := json.Unmarshal([]byte(out), &latest); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if latest.Item != nil {
		t.Errorf("expected empty store after delete, got %+v", latest.Item)
	}
}

// TestCLIExport tests the export command end to end.
func TestCLIExport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	created, err := ops.Create(database, ops.CreateInput{Title: "Export Test"})
	if err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}
	content := "<p>Work-energy theorem</p>"
	if _, err := ops.Save(database, ops.SaveInput{ID: created.ID, Content: &content}); err != nil {
		t.Fatalf("failed to save content: %v", err)
	}

	baseDir := t.TempDir()
	app := newCLIApp(database, cfg, baseDir)

	path := filepath.Join(baseDir, "out.pdf")
	out, err := runApp(t, app, []string{"notebook", "export", "--path=" + path, created.ID})
	if err != nil {
		t.Fatalf("export command failed: %v", err)
	}

	var exported ops.ExportPDFOutput
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if exported.Path != path {
		t.Errorf("expected path %s, got %s", path, exported.Path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read exported file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("expected PDF magic bytes")
	}
	if exported.Size != len(data) {
		t.Errorf("expected size %d, got %d", len(data), exported.Size)
	}
}

// TestCLIPurge tests the purge command.
func TestCLIPurge(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	created, err := ops.Create(database, ops.CreateInput{Title: "Doomed"})
	if err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}
	if _, err := ops.Delete(database, ops.DeleteInput{ID: created.ID}); err != nil {
		t.Fatalf("failed to delete test note: %v", err)
	}

	app := newCLIApp(database, cfg, t.TempDir())

	out, err := runApp(t, app, []string{"notebook", "purge"})
	if err != nil {
		t.Fatalf("purge command failed: %v", err)
	}

	var purged ops.PurgeOutput
	if err := json.Unmarshal([]byte(out), &purged); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if purged.Purged != 1 {
		t.Errorf("expected 1 purged, got %d", purged.Purged)
	}
}

// TestIsCLIMode tests subcommand detection.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"notebook"}, false},
		{"known command", []string{"notebook", "list"}, true},
		{"serve command", []string{"notebook", "serve"}, true},
		{"help flag", []string{"notebook", "--help"}, true},
		{"version flag", []string{"notebook", "-v"}, true},
		{"unknown arg", []string{"notebook", "bogus"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()
			if got := isCLIMode(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
