package prompts_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sifterhq/sifter/internal/prompts"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		input   string
		want    prompts.Stage
		wantErr bool
	}{
		{"entity", prompts.StageEntity, false},
		{"columns", prompts.StageColumns, false},
		{"Entity", "", true},
		{"rows", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := prompts.ParseStage(tt.input)
			if tt.wantErr {
				if !errors.Is(err, prompts.ErrInvalidStage) {
					t.Errorf("got %v, want ErrInvalidStage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStageUnmarshalRejectsUnknown(t *testing.T) {
	var s prompts.Stage
	if err := json.Unmarshal([]byte(`"detection"`), &s); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("got %v, want ErrInvalidStage", err)
	}
	if err := json.Unmarshal([]byte(`"columns"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != prompts.StageColumns {
		t.Errorf("got %s, want columns", s)
	}
}

func TestDefaultsCoverEveryStage(t *testing.T) {
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			instructions, err := prompts.DefaultInstructions(stage)
			if err != nil {
				t.Fatalf("instructions: %v", err)
			}
			if instructions == "" {
				t.Error("empty default instructions")
			}

			spec, err := prompts.DefaultSpec(stage)
			if err != nil {
				t.Fatalf("spec: %v", err)
			}
			if spec == "" {
				t.Error("empty default spec")
			}
		})
	}
}

func TestDefaultsRejectUnknownStage(t *testing.T) {
	if _, err := prompts.DefaultInstructions(prompts.Stage("rows")); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("instructions: got %v, want ErrInvalidStage", err)
	}
	if _, err := prompts.DefaultSpec(prompts.Stage("rows")); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("spec: got %v, want ErrInvalidStage", err)
	}
}
