package ops

import (
	"database/sql"
	"strings"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
	"github.com/swapavan11/apricity-notebook/internal/note"
)

// SaveInput contains parameters for the Save operation. Nil editable
// fields are left unchanged, matching the autosave payload where only
// what the editor touched is sent.
type SaveInput struct {
	ID string // required

	Title      *string
	Content    *string
	Strokes    *[]ink.Stroke
	Snapshot   []byte // nil = unchanged
	DocumentID *string
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updated_at"`
}

// Save writes a note's title, content, strokes, and snapshot in one update.
func Save(database *sql.DB, input SaveInput) (*SaveOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	n, err := db.GetByID(database, id, false)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errors.NewInvalidRequest("title must not be empty")
		}
		titleNorm := note.NormalizeTitle(title)
		if titleNorm != n.TitleNorm {
			exists, err := db.TitleExists(database, titleNorm)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, errors.NewConflict("a note with this title already exists")
			}
		}
		n.Title = title
		n.TitleNorm = titleNorm
	}
	if input.Content != nil {
		n.Content = *input.Content
	}
	if input.Strokes != nil {
		n.Strokes = *input.Strokes
	}
	if input.Snapshot != nil {
		n.Snapshot = input.Snapshot
	}
	if input.DocumentID != nil {
		n.DocumentID = cleanOptionalString(input.DocumentID)
	}

	if err := db.UpdateByID(database, n); err != nil {
		return nil, err
	}

	return &SaveOutput{
		ID:        n.ID,
		Title:     n.Title,
		UpdatedAt: n.UpdatedAt,
	}, nil
}
