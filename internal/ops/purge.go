package ops

import (
	"database/sql"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int // nil = purge all soft-deleted notes
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged   int   `json:"purged"`
	PurgedAt int64 `json:"purged_at"`
}

// Purge permanently removes soft-deleted notes.
func Purge(database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}

	purged, err := db.Purge(database, input.OlderThanDays)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:   purged,
		PurgedAt: time.Now().Unix(),
	}, nil
}
