package mappings

import (
	"errors"
	"net/http"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/extraction"
	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/internal/uploads"
)

// Domain errors for mapping operations.
var (
	ErrNotFound       = errors.New("column detection not found")
	ErrDuplicate      = errors.New("column mapping already exists")
	ErrNoDetections   = errors.New("file has no column detections")
	ErrNoMappings     = errors.New("at least one mapping required")
	ErrUnknownColumn  = errors.New("mapping references an undetected column")
	ErrEmptyPrincipal = errors.New("confirmed_by required")
)

// MapHTTPStatus maps mapping domain errors, including those surfaced
// from the pipeline stages it orchestrates, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNoDetections),
		errors.Is(err, ErrNoMappings),
		errors.Is(err, ErrUnknownColumn),
		errors.Is(err, ErrEmptyPrincipal):
		return http.StatusBadRequest
	case errors.Is(err, router.ErrBudgetExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, router.ErrUnavailable),
		errors.Is(err, classifier.ErrClassificationFailed):
		return http.StatusBadGateway
	case errors.Is(err, extraction.ErrMalformed),
		errors.Is(err, extraction.ErrUnsupportedType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, uploads.ErrNotFound),
		errors.Is(err, uploads.ErrStatusConflict):
		return uploads.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}
