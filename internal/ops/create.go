package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/note"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title      string  // required
	DocumentID *string // optional source PDF association
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	DocumentID *string `json:"document_id,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// Create persists a new empty note.
func Create(database *sql.DB, input CreateInput) (*CreateOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	input.DocumentID = cleanOptionalString(input.DocumentID)

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
		ID:         id,
		Title:      title,
		TitleNorm:  titleNorm,
		DocumentID: input.DocumentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := db.Insert(database, n); err != nil {
		return nil, err
	}

	return &CreateOutput{
		ID:         n.ID,
		Title:      n.Title,
		DocumentID: n.DocumentID,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}, nil
}
