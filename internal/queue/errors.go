package queue

import (
	"errors"
	"net/http"
)

// Domain errors for queue operations.
var (
	ErrNotFound      = errors.New("queue entry not found")
	ErrDuplicate     = errors.New("file already has an active queue entry")
	ErrInvalidStatus = errors.New("invalid queue status")
	ErrNotActive     = errors.New("file has no active queue entry")
	ErrEmptyFile     = errors.New("file_upload_id is required")
	ErrEmptyCompany  = errors.New("company_id is required")
)

// MapHTTPStatus maps queue domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotActive):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrEmptyCompany):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
