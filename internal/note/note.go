package note

import "github.com/swapavan11/apricity-notebook/internal/ink"

// Note is the persisted notebook entity: a page of rich text plus an ink
// layer, independently saved on every autosave cycle.
type Note struct {
	// ID is a ULID that uniquely identifies this note
	ID string

	// Title is the user-visible note title
	Title string

	// TitleNorm is the normalized title (lowercased, trimmed, collapsed spaces)
	TitleNorm string

	// DocumentID optionally associates the note with a source PDF (nullable)
	DocumentID *string

	// Content is the serialized rich-text markup
	Content string

	// Strokes is the vector ink layer. The raster Snapshot is the lossy
	// fast-path fallback; when strokes are present they take precedence on
	// reload.
	Strokes []ink.Stroke

	// Snapshot is the flattened ink layer as a PNG blob (nullable)
	Snapshot []byte

	// CreatedAt is the Unix timestamp when the note was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the note was last saved
	UpdatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}
