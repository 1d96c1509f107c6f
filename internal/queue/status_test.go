package queue_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sifterhq/sifter/internal/queue"
)

func TestParseStatus(t *testing.T) {
	for _, status := range queue.Statuses() {
		t.Run(string(status), func(t *testing.T) {
			got, err := queue.ParseStatus(string(status))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != status {
				t.Errorf("got %s, want %s", got, status)
			}
		})
	}

	if _, err := queue.ParseStatus("pending"); !errors.Is(err, queue.ErrInvalidStatus) {
		t.Errorf("got %v, want ErrInvalidStatus", err)
	}
}

func TestStatusActive(t *testing.T) {
	tests := []struct {
		status queue.Status
		want   bool
	}{
		{queue.StatusQueued, true},
		{queue.StatusProcessing, true},
		{queue.StatusCompleted, false},
		{queue.StatusFailed, false},
		{queue.StatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.status.Active(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s queue.Status
	if err := json.Unmarshal([]byte(`"running"`), &s); !errors.Is(err, queue.ErrInvalidStatus) {
		t.Errorf("got %v, want ErrInvalidStatus", err)
	}
	if err := json.Unmarshal([]byte(`"processing"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != queue.StatusProcessing {
		t.Errorf("got %s, want processing", s)
	}
}
