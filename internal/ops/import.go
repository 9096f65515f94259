package ops

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/note"
	"github.com/swapavan11/apricity-notebook/internal/richtext"
)

// ImportMarkdownInput contains parameters for the ImportMarkdown operation.
type ImportMarkdownInput struct {
	Path  string // required; markdown file to import
	Title string // optional; defaults to the file name without extension
}

// ImportMarkdownOutput contains the result of the ImportMarkdown operation.
type ImportMarkdownOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Blocks    int    `json:"blocks"`
	CreatedAt int64  `json:"created_at"`
}

// ImportMarkdown creates a new note from a markdown file. The markdown is
// converted to the rich text document model and persisted as content markup,
// so the imported note is editable like any other.
func ImportMarkdown(database *sql.DB, input ImportMarkdownInput) (*ImportMarkdownOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalidRequest("could not read markdown file: " + err.Error())
	}

	doc, err := richtext.FromMarkdown(source)
	if err != nil {
		return nil, errors.NewInvalidRequest("could not parse markdown: " + err.Error())
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	titleNorm := note.NormalizeTitle(title)
	exists, err := db.TitleExists(database, titleNorm)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewConflict("a note with this title already exists")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	n := &note.Note{
		ID:        id,
		Title:     title,
		TitleNorm: titleNorm,
		Content:   doc.MarshalHTML(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Insert(database, n); err != nil {
		return nil, err
	}

	return &ImportMarkdownOutput{
		ID:        n.ID,
		Title:     n.Title,
		Blocks:    len(doc.Blocks),
		CreatedAt: n.CreatedAt,
	}, nil
}
