package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
	"github.com/swapavan11/apricity-notebook/internal/logger"
	"github.com/swapavan11/apricity-notebook/internal/note"
)

// Insert stores a new note in the database.
func Insert(db *sql.DB, n *note.Note) error {
	strokesJSON, err := marshalStrokes(n.Strokes)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO notes (
			id, title, title_norm, document_id, content,
			strokes_json, snapshot, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = db.Exec(query,
		n.ID, n.Title, n.TitleNorm, toNullString(n.DocumentID), n.Content,
		strokesJSON, toNullBytes(n.Snapshot), n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves a note by its ULID.
// If includeDeleted is false, soft-deleted notes are excluded.
func GetByID(db *sql.DB, id string, includeDeleted bool) (*note.Note, error) {
	query := `
		SELECT id, title, title_norm, document_id, content,
			strokes_json, snapshot, created_at, updated_at, deleted_at
		FROM notes
		WHERE id = ?
	`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := db.QueryRow(query, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return n, nil
}

// Latest returns the most recently updated active note, or NOT_FOUND when
// the store is empty.
func Latest(db *sql.DB) (*note.Note, error) {
	query := `
		SELECT id, title, title_norm, document_id, content,
			strokes_json, snapshot, created_at, updated_at, deleted_at
		FROM notes
		WHERE deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`

	row := db.QueryRow(query)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("latest")
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return n, nil
}

// ListSummaries returns note summaries ordered by most-recently-updated,
// plus the total count for pagination.
func ListSummaries(db *sql.DB, limit, offset int, includeDeleted bool) ([]note.Summary, int, error) {
	where := "WHERE deleted_at IS NULL"
	if includeDeleted {
		where = ""
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes " + where).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, title, document_id,
			snapshot IS NOT NULL AND length(snapshot) > 0,
			created_at, updated_at, deleted_at
		FROM notes ` + where + `
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.Query(query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []note.Summary
	for rows.Next() {
		var (
			s         note.Summary
			docID     sql.NullString
			deletedAt sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Title, &docID, &s.HasSnapshot, &s.CreatedAt, &s.UpdatedAt, &deletedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.DocumentID = fromNullString(docID)
		if deletedAt.Valid {
			s.DeletedAt = &deletedAt.Int64
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// UpdateByID updates a note's saved state: title, content, strokes, and
// snapshot in one write. Sets updated_at to current timestamp.
// Does NOT change: id, created_at.
func UpdateByID(db *sql.DB, n *note.Note) error {
	strokesJSON, err := marshalStrokes(n.Strokes)
	if err != nil {
		return errors.NewInternal(err)
	}

	now := time.Now().Unix()

	query := `
		UPDATE notes
		SET title = ?, title_norm = ?, document_id = ?, content = ?,
			strokes_json = ?, snapshot = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.Exec(query,
		n.Title, n.TitleNorm, toNullString(n.DocumentID), n.Content,
		strokesJSON, toNullBytes(n.Snapshot), now,
		n.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(n.ID)
	}

	n.UpdatedAt = now

	return nil
}

// UpdateTitle renames a note without touching its content or ink.
func UpdateTitle(db *sql.DB, id, title, titleNorm string) error {
	now := time.Now().Unix()

	query := `
		UPDATE notes
		SET title = ?, title_norm = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.Exec(query, title, titleNorm, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// TitleExists reports whether an active note already uses the normalized
// title.
func TitleExists(db *sql.DB, titleNorm string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM notes WHERE title_norm = ? AND deleted_at IS NULL`
	if err := db.QueryRow(query, titleNorm).Scan(&count); err != nil {
		return false, errors.NewInternal(err)
	}
	return count > 0, nil
}

// SoftDelete marks a note as deleted by setting deleted_at.
func SoftDelete(db *sql.DB, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE notes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.Exec(query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// Purge permanently deletes soft-deleted notes. If olderThanDays is
// non-nil, only notes deleted at least that many days ago are removed.
// Returns the number of purged notes.
func Purge(db *sql.DB, olderThanDays *int) (int, error) {
	query := "DELETE FROM notes WHERE deleted_at IS NOT NULL"
	args := []any{}

	if olderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*olderThanDays).Unix()
		query += " AND deleted_at <= ?"
		args = append(args, cutoff)
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(purged), nil
}

// scanNote scans a single row into a Note struct.
func scanNote(row *sql.Row) (*note.Note, error) {
	var (
		n           note.Note
		docID       sql.NullString
		strokesJSON sql.NullString
		snapshot    []byte
		deletedAt   sql.NullInt64
	)

	err := row.Scan(
		&n.ID, &n.Title, &n.TitleNorm, &docID, &n.Content,
		&strokesJSON, &snapshot, &n.CreatedAt, &n.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	n.DocumentID = fromNullString(docID)
	n.Snapshot = snapshot
	if deletedAt.Valid {
		n.DeletedAt = &deletedAt.Int64
	}

	if strokesJSON.Valid && strokesJSON.String != "" {
		if err := json.Unmarshal([]byte(strokesJSON.String), &n.Strokes); err != nil {
			// Unreadable vector strokes degrade to the raster snapshot;
			// the note itself stays fetchable.
			logger.Warn("stroke data unreadable, falling back to snapshot",
				map[string]interface{}{"note_id": n.ID, "cause": err.Error()})
			n.Strokes = nil
		}
	}

	return &n, nil
}

// marshalStrokes converts the vector stroke list to its JSON column value.
func marshalStrokes(strokes []ink.Stroke) (sql.NullString, error) {
	if len(strokes) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(strokes)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// toNullBytes maps an empty blob to NULL.
func toNullBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
