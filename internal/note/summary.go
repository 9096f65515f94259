package note

// Summary represents a note's metadata without the content markup or the
// snapshot blob. Used for sidebar list operations to reduce data transfer.
type Summary struct {
	// ID is a ULID that uniquely identifies this note
	ID string `json:"id"`

	// Title is the user-visible note title
	Title string `json:"title"`

	// DocumentID optionally associates the note with a source PDF (nullable)
	DocumentID *string `json:"document_id,omitempty"`

	// HasSnapshot reports whether a flattened ink snapshot is stored
	HasSnapshot bool `json:"has_snapshot"`

	// CreatedAt is the Unix timestamp when the note was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp when the note was last saved
	UpdatedAt int64 `json:"updated_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// ToSummary converts a Note to a Summary by stripping content and snapshot.
func (n *Note) ToSummary() Summary {
	return Summary{
		ID:          n.ID,
		Title:       n.Title,
		DocumentID:  n.DocumentID,
		HasSnapshot: len(n.Snapshot) > 0,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		DeletedAt:   n.DeletedAt,
	}
}
