package ops

import (
	"database/sql"

	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/note"
)

// NoteStore adapts the database layer to the editor session's Store
// interface, so a session persists through the same code paths as the
// CLI, HTTP, and MCP surfaces.
type NoteStore struct {
	db *sql.DB
}

// NewNoteStore wraps an open database.
func NewNoteStore(database *sql.DB) *NoteStore {
	return &NoteStore{db: database}
}

func (s *NoteStore) Latest() (*note.Note, error) {
	return db.Latest(s.db)
}

func (s *NoteStore) Create(title string) (*note.Note, error) {
	out, err := Create(s.db, CreateInput{Title: title})
	if err != nil {
		return nil, err
	}
	return db.GetByID(s.db, out.ID, false)
}

func (s *NoteStore) Fetch(id string) (*note.Note, error) {
	return db.GetByID(s.db, id, false)
}

func (s *NoteStore) Save(n *note.Note) error {
	return db.UpdateByID(s.db, n)
}

func (s *NoteStore) Delete(id string) error {
	return db.SoftDelete(s.db, id)
}

func (s *NoteStore) List(limit, offset int) ([]note.Summary, int, error) {
	return db.ListSummaries(s.db, limit, offset, false)
}
