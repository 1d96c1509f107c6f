package uploads

import (
	"errors"
	"net/http"
)

// Domain errors for upload operations.
var (
	ErrNotFound       = errors.New("file upload not found")
	ErrDuplicate      = errors.New("file upload already exists")
	ErrInvalidStatus  = errors.New("invalid upload status")
	ErrStatusConflict = errors.New("upload is not in a state that permits this operation")
	ErrInvalidFile    = errors.New("invalid upload request")
	ErrFileTooLarge   = errors.New("uploaded file exceeds the size limit")
	ErrEmptyCompany   = errors.New("company_id is required")
	ErrEmptyPrincipal = errors.New("uploaded_by is required")
)

// MapHTTPStatus maps upload domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrEmptyCompany),
		errors.Is(err, ErrEmptyPrincipal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
