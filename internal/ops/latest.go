package ops

import (
	"database/sql"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/note"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	IncludeContent bool // default: summary only
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item    *note.Summary `json:"item"` // nil when the store is empty
	Content string        `json:"content,omitempty"`
}

// Latest retrieves the most recently updated active note. It backs the
// open-notebook flow: select the newest note, or signal the caller to
// create a default one.
func Latest(database *sql.DB, input LatestInput) (*LatestOutput, error) {
	n, err := db.Latest(database)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return &LatestOutput{Item: nil}, nil
		}
		return nil, err
	}

	summary := n.ToSummary()
	out := &LatestOutput{Item: &summary}
	if input.IncludeContent {
		out.Content = n.Content
	}
	return out, nil
}
