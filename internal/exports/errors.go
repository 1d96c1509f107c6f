package exports

import (
	"errors"
	"net/http"

	"github.com/sifterhq/sifter/internal/records"
)

// Domain errors for export operations.
var (
	ErrNotFound          = errors.New("sync status not found")
	ErrDuplicate         = errors.New("sync status already exists")
	ErrNoSink            = errors.New("no sink registered for dashboard")
	ErrInvalidSyncStatus = errors.New("invalid sync status")
	ErrEmptyCompany      = errors.New("company id required")
)

// MapHTTPStatus maps export domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNoSink),
		errors.Is(err, ErrInvalidSyncStatus),
		errors.Is(err, ErrEmptyCompany),
		errors.Is(err, records.ErrUnknownDashboard):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
