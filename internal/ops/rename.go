package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/note"
)

// RenameInput contains parameters for the Rename operation.
type RenameInput struct {
	ID    string // required
	Title string // required
}

// RenameOutput contains the result of the Rename operation.
type RenameOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updated_at"`
}

// Rename changes a note's title without touching its content or ink.
func Rename(database *sql.DB, input RenameInput) (*RenameOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	n, err := db.GetByID(database, id, false)
	if err != nil {
		return nil, err
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

	if err := db.UpdateTitle(database, id, title, titleNorm); err != nil {
		return nil, err
	}

	return &RenameOutput{
		ID:        id,
		Title:     title,
		UpdatedAt: time.Now().Unix(),
	}, nil
}
