package router

import (
	"errors"
	"net/http"
)

// Domain errors for model routing operations.
var (
	ErrBudgetExceeded = errors.New("daily model budget exceeded")
	ErrUnavailable    = errors.New("model backend unavailable")
)

// MapHTTPStatus maps routing errors to appropriate HTTP status codes.
// Budget exhaustion is a retry-later condition, not a generic failure.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrBudgetExceeded) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
