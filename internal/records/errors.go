package records

import (
	"errors"
	"net/http"

	"github.com/sifterhq/sifter/internal/uploads"
)

// Domain errors for record operations.
var (
	ErrNotFound                = errors.New("processed record not found")
	ErrDuplicate               = errors.New("processed record version already exists")
	ErrNoMapping               = errors.New("file has no resolved column mapping")
	ErrNoEntityType            = errors.New("file has no detected entity type")
	ErrUnknownDashboard        = errors.New("unknown dashboard")
	ErrInvalidValidationStatus = errors.New("invalid validation status")
)

// MapHTTPStatus maps record domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNoMapping),
		errors.Is(err, ErrNoEntityType),
		errors.Is(err, ErrUnknownDashboard),
		errors.Is(err, ErrInvalidValidationStatus):
		return http.StatusBadRequest
	case errors.Is(err, uploads.ErrNotFound),
		errors.Is(err, uploads.ErrStatusConflict):
		return uploads.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}
