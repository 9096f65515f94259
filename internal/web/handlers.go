package web

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/swapavan11/apricity-notebook/internal/config"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
	"github.com/swapavan11/apricity-notebook/internal/ops"
)

// Handlers contains HTTP route handlers for the notebook API.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// HandleList handles GET /notes — paginated note summaries.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:          parseIntParam(r, "limit", 0),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(h.db, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createRequest struct {
	Title      string  `json:"title"`
	DocumentID *string `json:"document_id,omitempty"`
}

// HandleCreate handles POST /notes — create an empty note.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("request body must be valid JSON"))
		return
	}

	result, err := ops.Create(h.db, ops.CreateInput{
		Title:      req.Title,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleLatest handles GET /notes/latest — most recently updated note.
func (h *Handlers) HandleLatest(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Latest(h.db, ops.LatestInput{
		IncludeContent: parseBoolParam(r, "include_content"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleFetch handles GET /notes/{id} — full note including strokes.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Fetch(h.db, ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type saveRequest struct {
	Title      *string       `json:"title,omitempty"`
	Content    *string       `json:"content,omitempty"`
	Strokes    *[]ink.Stroke `json:"strokes,omitempty"`
	Snapshot   []byte        `json:"snapshot,omitempty"` // base64 in JSON
	DocumentID *string       `json:"document_id,omitempty"`
}

// HandleSave handles PUT /notes/{id} — the autosave payload.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("request body must be valid JSON"))
		return
	}

	result, err := ops.Save(h.db, ops.SaveInput{
		ID:         r.PathValue("id"),
		Title:      req.Title,
		Content:    req.Content,
		Strokes:    req.Strokes,
		Snapshot:   req.Snapshot,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleDelete handles DELETE /notes/{id} — soft delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleSnapshot handles GET /notes/{id}/snapshot — the ink layer PNG.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Fetch(h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	if len(result.Snapshot) == 0 {
		writeError(w, errors.NewNotFound(r.PathValue("id")+"/snapshot"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Snapshot)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Snapshot)
}

// HandleExport handles GET /notes/{id}/export — PDF download.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ExportPDF(r.Context(), h.db, h.cfg, ops.ExportPDFInput{
		ID: r.PathValue("id"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.ID+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Bytes)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Bytes)
}

type purgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// HandlePurge handles POST /notes/purge — permanently remove deleted notes.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.NewInvalidRequest("request body must be valid JSON"))
			return
		}
	}

	result, err := ops.Purge(h.db, ops.PurgeInput{OlderThanDays: req.OlderThanDays})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeJSON renders a success payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError maps a structured error onto its HTTP status and JSON shape.
// Anything unstructured becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	var nbErr *errors.NotebookError
	if e, ok := err.(*errors.NotebookError); ok {
		nbErr = e
	} else {
		nbErr = errors.NewInternal(err)
	}

	writeJSON(w, nbErr.Status, errorBody{
		Error: errorDetail{
			Code:    string(nbErr.Code),
			Message: nbErr.Message,
			Details: nbErr.Details,
		},
	})
}

// parseIntParam parses an integer query parameter with a fallback.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// parseBoolParam reports whether a query parameter is set truthy.
func parseBoolParam(r *http.Request, name string) bool {
	raw := r.URL.Query().Get(name)
	return raw == "1" || raw == "true"
}
