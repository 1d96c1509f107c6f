package mappings_test

import (
	"testing"

	"github.com/sifterhq/sifter/internal/mappings"
)

func gateConfig() mappings.Config {
	return mappings.Config{AutoAcceptThreshold: 70, AutoConfirmThreshold: 85, SampleRows: 5}
}

func scored(column string, confidence int) mappings.ColumnDetection {
	return mappings.ColumnDetection{
		SourceColumnName: column,
		ConfidenceScore:  confidence,
	}
}

func TestGateDetections(t *testing.T) {
	tests := []struct {
		name            string
		detections      []mappings.ColumnDetection
		wantAutoConfirm bool
		wantReview      []string
	}{
		{
			"all columns clear confirm threshold",
			[]mappings.ColumnDetection{scored("sku", 92), scored("qty", 85)},
			true,
			nil,
		},
		{
			"one column between accept and confirm",
			[]mappings.ColumnDetection{scored("sku", 92), scored("qty", 80)},
			false,
			nil,
		},
		{
			"column below accept forces review",
			[]mappings.ColumnDetection{scored("sku", 92), scored("notes", 40)},
			false,
			[]string{"notes"},
		},
		{
			"boundary confidence confirms",
			[]mappings.ColumnDetection{scored("sku", 85)},
			true,
			nil,
		},
		{
			"boundary accept needs no review",
			[]mappings.ColumnDetection{scored("sku", 70)},
			false,
			nil,
		},
		{
			"no detections never confirm",
			nil,
			false,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := mappings.GateDetections(tt.detections, gateConfig())

			if gate.AutoConfirm != tt.wantAutoConfirm {
				t.Errorf("got auto confirm %v, want %v", gate.AutoConfirm, tt.wantAutoConfirm)
			}
			if len(gate.NeedsReview) != len(tt.wantReview) {
				t.Fatalf("got needs review %v, want %v", gate.NeedsReview, tt.wantReview)
			}
			for i, col := range tt.wantReview {
				if gate.NeedsReview[i] != col {
					t.Errorf("got needs review %v, want %v", gate.NeedsReview, tt.wantReview)
				}
			}
		})
	}
}
