package ops

import (
	"testing"

	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
)

func TestSave_HappyPath(t *testing.T) {
	database := setupDB(t)

	created, err := Create(database, CreateInput{Title: "draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	strokes := []ink.Stroke{{
		Kind:   ink.KindPen,
		Color:  "#1a1a1a",
		Width:  3,
		Points: []ink.Point{{X: 10, Y: 10}, {X: 50, Y: 10}},
	}}
	snapshot := []byte{0x89, 0x50, 0x4e, 0x47}

	output, err := Save(database, SaveInput{
		ID:       created.ID,
		Content:  stringPtr("<p>study notes</p>"),
		Strokes:  &strokes,
		Snapshot: snapshot,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if output.UpdatedAt < created.UpdatedAt {
		t.Error("UpdatedAt went backwards")
	}

	fetched, err := Fetch(database, FetchInput{ID: created.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.Content != "<p>study notes</p>" {
		t.Errorf("Content = %q", fetched.Content)
	}
	if len(fetched.Strokes) != 1 {
		t.Errorf("len(Strokes) = %d, want 1", len(fetched.Strokes))
	}
	if len(fetched.Snapshot) != 4 {
		t.Errorf("len(Snapshot) = %d, want 4", len(fetched.Snapshot))
	}
	// Untouched fields survive.
	if fetched.Title != "draft" {
		t.Errorf("Title = %q, want draft", fetched.Title)
	}
}

func TestSave_PartialUpdate(t *testing.T) {
	database := setupDB(t)

	created, err := Create(database, CreateInput{Title: "draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := Save(database, SaveInput{
		ID:      created.ID,
		Content: stringPtr("<p>original</p>"),
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A title-only save must not clear the content.
	if _, err := Save(database, SaveInput{
		ID:    created.ID,
		Title: stringPtr("renamed"),
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fetched, err := Fetch(database, FetchInput{ID: created.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.Title != "renamed" {
		t.Errorf("Title = %q", fetched.Title)
	}
	if fetched.Content != "<p>original</p>" {
		t.Errorf("Content = %q, want original preserved", fetched.Content)
	}
}

func TestSave_NotFound(t *testing.T) {
	database := setupDB(t)

	_, err := Save(database, SaveInput{ID: "01MISSING", Content: stringPtr("x")})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestSave_TitleConflict(t *testing.T) {
	database := setupDB(t)

	if _, err := Create(database, CreateInput{Title: "taken"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	created, err := Create(database, CreateInput{Title: "mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = Save(database, SaveInput{ID: created.ID, Title: stringPtr("TAKEN")})
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("err = %v, want CONFLICT", err)
	}
}

func TestRename_HappyPath(t *testing.T) {
	database := setupDB(t)

	created, err := Create(database, CreateInput{Title: "before"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := Save(database, SaveInput{
		ID:      created.ID,
		Content: stringPtr("<p>keep me</p>"),
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	output, err := Rename(database, RenameInput{ID: created.ID, Title: "after"})
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if output.Title != "after" {
		t.Errorf("Title = %q", output.Title)
	}

	fetched, err := Fetch(database, FetchInput{ID: created.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.Content != "<p>keep me</p>" {
		t.Errorf("rename touched content: %q", fetched.Content)
	}
}

func TestRename_SameTitleIsAllowed(t *testing.T) {
	database := setupDB(t)

	created, err := Create(database, CreateInput{Title: "stable"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Renaming to the same normalized title must not self-conflict.
	if _, err := Rename(database, RenameInput{ID: created.ID, Title: "Stable"}); err != nil {
		t.Errorf("Rename to same title failed: %v", err)
	}
}

func TestRename_Conflict(t *testing.T) {
	database := setupDB(t)

	if _, err := Create(database, CreateInput{Title: "taken"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	created, err := Create(database, CreateInput{Title: "mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = Rename(database, RenameInput{ID: created.ID, Title: "taken"})
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("err = %v, want CONFLICT", err)
	}
}
