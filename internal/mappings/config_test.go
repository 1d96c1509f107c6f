package mappings_test

import (
	"testing"

	"github.com/sifterhq/sifter/internal/mappings"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	var cfg mappings.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.AutoAcceptThreshold != 70 {
		t.Errorf("got auto accept %d, want 70", cfg.AutoAcceptThreshold)
	}
	if cfg.AutoConfirmThreshold != 85 {
		t.Errorf("got auto confirm %d, want 85", cfg.AutoConfirmThreshold)
	}
	if cfg.SampleRows != 5 {
		t.Errorf("got sample rows %d, want 5", cfg.SampleRows)
	}
}

func TestConfigFinalizeEnvOverride(t *testing.T) {
	t.Setenv("TEST_MAPPINGS_ACCEPT", "60")
	t.Setenv("TEST_MAPPINGS_CONFIRM", "90")

	var cfg mappings.Config
	err := cfg.Finalize(&mappings.Env{
		AutoAcceptThreshold:  "TEST_MAPPINGS_ACCEPT",
		AutoConfirmThreshold: "TEST_MAPPINGS_CONFIRM",
		SampleRows:           "TEST_MAPPINGS_SAMPLE",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.AutoAcceptThreshold != 60 {
		t.Errorf("got auto accept %d, want 60", cfg.AutoAcceptThreshold)
	}
	if cfg.AutoConfirmThreshold != 90 {
		t.Errorf("got auto confirm %d, want 90", cfg.AutoConfirmThreshold)
	}
	if cfg.SampleRows != 5 {
		t.Errorf("unset env should keep default, got %d", cfg.SampleRows)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     mappings.Config
		wantErr bool
	}{
		{"defaults valid", mappings.Config{}, false},
		{"accept above 100", mappings.Config{AutoAcceptThreshold: 101}, true},
		{"confirm below accept", mappings.Config{AutoAcceptThreshold: 80, AutoConfirmThreshold: 75}, true},
		{"equal thresholds", mappings.Config{AutoAcceptThreshold: 80, AutoConfirmThreshold: 80}, false},
		{"negative sample rows", mappings.Config{SampleRows: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := mappings.Config{AutoAcceptThreshold: 70, AutoConfirmThreshold: 85, SampleRows: 5}
	cfg.Merge(&mappings.Config{AutoConfirmThreshold: 95})

	if cfg.AutoAcceptThreshold != 70 {
		t.Errorf("zero overlay field should not overwrite, got %d", cfg.AutoAcceptThreshold)
	}
	if cfg.AutoConfirmThreshold != 95 {
		t.Errorf("got auto confirm %d, want 95", cfg.AutoConfirmThreshold)
	}
}
