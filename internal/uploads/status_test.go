package uploads_test

import (
	"encoding/json"
	"testing"

	"github.com/sifterhq/sifter/internal/uploads"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   uploads.Status
		to     uploads.Status
		want   bool
	}{
		{"upload to analyzing", uploads.StatusUploaded, uploads.StatusAnalyzing, true},
		{"analysis needs review", uploads.StatusAnalyzing, uploads.StatusMappingRequired, true},
		{"analysis auto-confirms", uploads.StatusAnalyzing, uploads.StatusMappingConfirmed, true},
		{"analysis deferred", uploads.StatusAnalyzing, uploads.StatusUploaded, true},
		{"human confirms", uploads.StatusMappingRequired, uploads.StatusMappingConfirmed, true},
		{"reanalyze after review", uploads.StatusMappingRequired, uploads.StatusAnalyzing, true},
		{"reanalyze after confirm", uploads.StatusMappingConfirmed, uploads.StatusAnalyzing, true},
		{"standardize", uploads.StatusMappingConfirmed, uploads.StatusProcessing, true},
		{"finish", uploads.StatusProcessing, uploads.StatusCompleted, true},
		{"export", uploads.StatusCompleted, uploads.StatusExported, true},
		{"archive completed", uploads.StatusCompleted, uploads.StatusArchived, true},
		{"archive exported", uploads.StatusExported, uploads.StatusArchived, true},
		{"retry resets to uploaded", uploads.StatusFailed, uploads.StatusUploaded, true},
		{"reanalyze failed directly", uploads.StatusFailed, uploads.StatusAnalyzing, true},

		{"skip analysis", uploads.StatusUploaded, uploads.StatusProcessing, false},
		{"analyzing cannot restart itself", uploads.StatusAnalyzing, uploads.StatusAnalyzing, false},
		{"skip confirmation", uploads.StatusAnalyzing, uploads.StatusProcessing, false},
		{"rewind completed", uploads.StatusCompleted, uploads.StatusProcessing, false},
		{"export unfinished", uploads.StatusProcessing, uploads.StatusExported, false},
		{"revive archived", uploads.StatusArchived, uploads.StatusAnalyzing, false},
		{"revive cancelled", uploads.StatusCancelled, uploads.StatusAnalyzing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestFailureReachableFromActiveStates(t *testing.T) {
	for _, s := range uploads.Statuses() {
		t.Run(string(s), func(t *testing.T) {
			want := !s.Terminal()
			if got := s.CanTransition(uploads.StatusFailed); got != want {
				t.Errorf("fail from %s: got %v, want %v", s, got, want)
			}
			if got := s.CanTransition(uploads.StatusCancelled); got != want {
				t.Errorf("cancel from %s: got %v, want %v", s, got, want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range uploads.Statuses() {
		got, err := uploads.ParseStatus(string(s))
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		if got != s {
			t.Errorf("got %s, want %s", got, s)
		}
	}

	if _, err := uploads.ParseStatus("queued"); err == nil {
		t.Error("unknown status should not parse")
	}
}

func TestStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s uploads.Status
	if err := json.Unmarshal([]byte(`"sideways"`), &s); err == nil {
		t.Error("expected unmarshal error for unknown status")
	}
	if err := json.Unmarshal([]byte(`"processing"`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != uploads.StatusProcessing {
		t.Errorf("got %s, want processing", s)
	}
}
