package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swapavan11/apricity-notebook/internal/config"
	"github.com/swapavan11/apricity-notebook/internal/db"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/export"
)

// ExportPDFInput contains parameters for the ExportPDF operation.
type ExportPDFInput struct {
	ID   string // required
	Path string // optional; when set, the PDF is also written to this file
}

// ExportPDFOutput contains the result of the ExportPDF operation. Bytes
// carries the document for in-process consumers (the HTTP download
// handler); it is not part of the JSON shape.
type ExportPDFOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path,omitempty"`
	Size       int    `json:"size"`
	ExportedAt int64  `json:"exported_at"`

	Bytes []byte `json:"-"`
}

// ExportPDF renders a note into a paginated PDF.
func ExportPDF(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportPDFInput) (*ExportPDFOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	n, err := db.GetByID(database, id, false)
	if err != nil {
		return nil, err
	}

	blob, err := export.New(cfg).Export(ctx, n, nil)
	if err != nil {
		return nil, err
	}

	out := &ExportPDFOutput{
		ID:         n.ID,
		Size:       len(blob),
		ExportedAt: time.Now().Unix(),
		Bytes:      blob,
	}

	if input.Path != "" {
		if err := writePDF(input.Path, blob); err != nil {
			return nil, err
		}
		out.Path = input.Path
	}
	return out, nil
}

// writePDF writes through a temp file and renames, so a failed export
// never leaves a truncated PDF behind.
func writePDF(path string, blob []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".export-*.pdf")
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewInternal(fmt.Errorf("failed to write export: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewInternal(fmt.Errorf("failed to close export: %w", err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	return nil
}

// DefaultExportPath builds <baseDir>/exports/<id>-<timestamp>.pdf.
func DefaultExportPath(baseDir, id string, now time.Time) string {
	name := fmt.Sprintf("%s-%s.pdf", id, now.UTC().Format("20060102-150405"))
	return filepath.Join(baseDir, "exports", name)
}
