package queue

import (
	"encoding/json"
	"fmt"
)

// Status is a queue entry's lifecycle state.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Statuses returns all valid queue statuses in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusQueued,
		StatusProcessing,
		StatusCompleted,
		StatusFailed,
		StatusCancelled,
	}
}

// Active reports whether the entry still represents in-flight work.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusProcessing
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a string as a known queue status.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses() {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}
