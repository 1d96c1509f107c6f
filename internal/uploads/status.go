package uploads

import (
	"encoding/json"
	"slices"
)

// Status represents a file upload's position in the ingestion pipeline.
type Status string

// Pipeline states. A file moves uploaded → analyzing → mapping_required →
// mapping_confirmed → processing → completed → exported → archived; any
// state may fall to failed or cancelled. Analysis may skip the human step
// and land directly on mapping_confirmed when every column clears the
// auto-confirm threshold.
const (
	StatusUploaded         Status = "uploaded"
	StatusAnalyzing        Status = "analyzing"
	StatusMappingRequired  Status = "mapping_required"
	StatusMappingConfirmed Status = "mapping_confirmed"
	StatusProcessing       Status = "processing"
	StatusCompleted        Status = "completed"
	StatusExported         Status = "exported"
	StatusArchived         Status = "archived"
	StatusFailed           Status = "failed"
	StatusCancelled        Status = "cancelled"
)

var statuses = []Status{
	StatusUploaded,
	StatusAnalyzing,
	StatusMappingRequired,
	StatusMappingConfirmed,
	StatusProcessing,
	StatusCompleted,
	StatusExported,
	StatusArchived,
	StatusFailed,
	StatusCancelled,
}

// transitions enumerates the legal forward edges of the state machine.
// failed and cancelled are reachable from any non-terminal state and are
// handled separately in CanTransition. analyzing may revert to uploaded
// when analysis is denied for a retry-later condition (budget exhaustion)
// so the file is not stuck mid-pipeline.
var transitions = map[Status][]Status{
	StatusUploaded:         {StatusAnalyzing},
	StatusAnalyzing:        {StatusMappingRequired, StatusMappingConfirmed, StatusUploaded},
	StatusMappingRequired:  {StatusMappingConfirmed, StatusAnalyzing},
	StatusMappingConfirmed: {StatusProcessing, StatusAnalyzing},
	StatusProcessing:       {StatusCompleted},
	StatusCompleted:        {StatusExported, StatusArchived},
	StatusExported:         {StatusArchived},
	StatusFailed:           {StatusUploaded, StatusAnalyzing},
	StatusArchived:         nil,
	StatusCancelled:        nil,
}

// Statuses returns the list of valid upload statuses.
func Statuses() []Status {
	return statuses
}

// ParseStatus validates a string as a known upload status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known status value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Terminal reports whether no further pipeline work is possible.
func (s Status) Terminal() bool {
	return s == StatusArchived || s == StatusCancelled
}

// CanTransition reports whether moving from s to target is a legal edge.
// Every non-terminal state may move to failed or cancelled.
func (s Status) CanTransition(target Status) bool {
	if target == StatusFailed || target == StatusCancelled {
		return !s.Terminal()
	}
	return slices.Contains(transitions[s], target)
}
