package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse indicates the backend returned no completion choices.
	ErrEmptyResponse = errors.New("empty completion response")
	// ErrUpstream indicates a transport or non-2xx failure from the backend.
	ErrUpstream = errors.New("llm upstream failure")
)

// StatusError wraps a non-2xx HTTP response from the backend.
// Retryable reports whether the status indicates a transient condition.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm upstream status %d: %s", e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

// Retryable reports whether the failure is worth retrying:
// rate limits and server-side errors, but not auth or request errors.
func (e *StatusError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
