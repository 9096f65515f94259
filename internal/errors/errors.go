package errors

import "fmt"

// ErrorCode represents a notebook error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"        // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"              // 404
	ErrConflict       ErrorCode = "CONFLICT"               // 409
	ErrSnapshotDecode ErrorCode = "SNAPSHOT_DECODE_FAILED" // 422
	ErrExportFailed   ErrorCode = "EXPORT_FAILED"          // 500
	ErrInternal       ErrorCode = "INTERNAL"               // 500
)

// NotebookError represents a structured error with code, status, and details.
type NotebookError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *NotebookError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *NotebookError {
	return &NotebookError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a note cannot be found.
func NewNotFound(identifier string) *NotebookError {
	return &NotebookError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("note not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *NotebookError {
	return &NotebookError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewSnapshotDecode creates a 422 error for an unreadable ink snapshot blob.
func NewSnapshotDecode(id string, err error) *NotebookError {
	return &NotebookError{
		Code:    ErrSnapshotDecode,
		Status:  422,
		Message: fmt.Sprintf("could not decode ink snapshot for note %s", id),
		Details: map[string]any{"id": id, "cause": err.Error()},
	}
}

// NewExportFailed creates a 500 error for a failed PDF export.
func NewExportFailed(err error) *NotebookError {
	msg := "export failed"
	if err != nil {
		msg = fmt.Sprintf("export failed: %s", err.Error())
	}
	return &NotebookError{
		Code:    ErrExportFailed,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *NotebookError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &NotebookError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a NotebookError with the given code.
func Is(err error, code ErrorCode) bool {
	if nErr, ok := err.(*NotebookError); ok {
		return nErr.Code == code
	}
	return false
}
