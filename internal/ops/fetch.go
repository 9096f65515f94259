package ops

import (
	"database/sql"
	"strings"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string // required
	IncludeDeleted bool
}

// FetchOutput contains the full note: metadata, content markup, vector
// strokes, and the raster snapshot.
type FetchOutput struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	DocumentID *string      `json:"document_id,omitempty"`
	Content    string       `json:"content"`
	Strokes    []ink.Stroke `json:"strokes,omitempty"`
	Snapshot   []byte       `json:"snapshot,omitempty"`
	CreatedAt  int64        `json:"created_at"`
	UpdatedAt  int64        `json:"updated_at"`
	DeletedAt  *int64       `json:"deleted_at,omitempty"`
}

// Fetch retrieves a note by ID.
func Fetch(database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	n, err := db.GetByID(database, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		ID:         n.ID,
		Title:      n.Title,
		DocumentID: n.DocumentID,
		Content:    n.Content,
		Strokes:    n.Strokes,
		Snapshot:   n.Snapshot,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		DeletedAt:  n.DeletedAt,
	}, nil
}
