package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/swapavan11/apricity-notebook/internal/errors"
)

func writeMarkdownFile(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("writing markdown file: %v", err)
	}
	return path
}

func TestImportMarkdown(t *testing.T) {
	database := setupDB(t)
	path := writeMarkdownFile(t, "osmosis.md", "# Osmosis\n\nWater moves across a **selectively permeable** membrane.\n")

	out, err := ImportMarkdown(database, ImportMarkdownInput{Path: path})
	if err != nil {
		t.Fatalf("ImportMarkdown() error = %v", err)
	}
	if out.Title != "osmosis" {
		t.Errorf("Title = %q, want file-derived %q", out.Title, "osmosis")
	}
	if out.Blocks < 2 {
		t.Errorf("Blocks = %d, want heading and paragraph", out.Blocks)
	}

	fetched, err := Fetch(database, FetchInput{ID: out.ID})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(fetched.Content, "<b>selectively permeable</b>") {
		t.Errorf("Content = %q, want bold span from markdown emphasis", fetched.Content)
	}
}

func TestImportMarkdown_ExplicitTitle(t *testing.T) {
	database := setupDB(t)
	path := writeMarkdownFile(t, "notes.md", "plain text\n")

	out, err := ImportMarkdown(database, ImportMarkdownInput{Path: path, Title: "Biology Week 3"})
	if err != nil {
		t.Fatalf("ImportMarkdown() error = %v", err)
	}
	if out.Title != "Biology Week 3" {
		t.Errorf("Title = %q", out.Title)
	}
}

func TestImportMarkdown_MissingFile(t *testing.T) {
	database := setupDB(t)

	_, err := ImportMarkdown(database, ImportMarkdownInput{Path: filepath.Join(t.TempDir(), "absent.md")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestImportMarkdown_DuplicateTitle(t *testing.T) {
	database := setupDB(t)
	path := writeMarkdownFile(t, "physics.md", "content\n")

	if _, err := Create(database, CreateInput{Title: "physics"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := ImportMarkdown(database, ImportMarkdownInput{Path: path})
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("error = %v, want CONFLICT", err)
	}
}
