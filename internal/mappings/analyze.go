package mappings

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/extraction"
	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/internal/uploads"
)

func (r *repo) Analyze(ctx context.Context, fileID uuid.UUID) (*AnalyzeResult, error) {
	// the analyzing status is the re-entry lock: a second concurrent run
	// or a terminal file fails this guarded transition
	up, err := r.uploads.Transition(
		ctx, fileID, uploads.StatusAnalyzing,
		uploads.StatusUploaded,
		uploads.StatusMappingRequired,
		uploads.StatusMappingConfirmed,
		uploads.StatusFailed,
	)
	if err != nil {
		return nil, err
	}

	result, err := r.extract(ctx, up)
	if err != nil {
		r.fail(ctx, fileID, fmt.Sprintf("extraction failed: %v", err))
		return nil, err
	}

	if err := r.uploads.ReplaceRows(ctx, fileID, result); err != nil {
		r.fail(ctx, fileID, fmt.Sprintf("row persistence failed: %v", err))
		return nil, err
	}

	samples := sampleRows(result, r.config.SampleRows)

	classification, err := r.classifier.Classify(ctx, classifier.Input{
		Filename: up.OriginalFilename,
		Columns:  result.Columns,
		Samples:  samples,
	})
	if err != nil {
		if errors.Is(err, router.ErrBudgetExceeded) {
			// retry-later condition, not a failure: release the lock
			r.revert(ctx, fileID)
			return nil, err
		}
		r.fail(ctx, fileID, fmt.Sprintf("classification failed: %v", err))
		return nil, err
	}

	detections := buildDetections(result, classification, r.config.SampleRows)

	stored, err := r.replaceDetections(ctx, fileID, detections)
	if err != nil {
		r.fail(ctx, fileID, fmt.Sprintf("detection persistence failed: %v", err))
		return nil, err
	}

	if err := r.uploads.SetEntityType(ctx, fileID, string(classification.Entity.EntityType)); err != nil {
		return nil, err
	}

	gate := GateDetections(stored, r.config)

	target := uploads.StatusMappingRequired
	if gate.AutoConfirm {
		target = uploads.StatusMappingConfirmed
	}

	// a concurrent cancel between stages surfaces here as a conflict
	final, err := r.uploads.Transition(ctx, fileID, target, uploads.StatusAnalyzing)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(
		ctx, "analysis complete",
		"file_upload_id", fileID,
		"entity_type", classification.Entity.EntityType,
		"status", final.Status,
		"rows", len(result.Rows),
		"columns", len(result.Columns),
	)

	return &AnalyzeResult{
		EntityType:     classification.Entity.EntityType,
		Confidence:     classification.Entity.Confidence,
		SecondaryTypes: classification.Entity.SecondaryTypes,
		Suggestions:    stored,
		NeedsReview:    gate.NeedsReview,
		SampleData:     samples,
		Status:         final.Status,
		RowCount:       len(result.Rows),
		Escalated:      classification.Escalated,
		CostUSD:        classification.CostUSD,
	}, nil
}

func (r *repo) extract(ctx context.Context, up *uploads.FileUpload) (*extraction.Result, error) {
	rc, err := r.uploads.Download(ctx, up.ID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}

	return extraction.Extract(data, up.FileType)
}

// fail records the stage failure reason; a concurrent cancel wins the race.
func (r *repo) fail(ctx context.Context, fileID uuid.UUID, reason string) {
	if err := r.uploads.MarkFailed(ctx, fileID, reason); err != nil {
		r.logger.Warn("mark failed lost to concurrent transition",
			"file_upload_id", fileID,
			"error", err,
		)
	}
}

func (r *repo) revert(ctx context.Context, fileID uuid.UUID) {
	if _, err := r.uploads.Transition(
		ctx, fileID, uploads.StatusUploaded, uploads.StatusAnalyzing,
	); err != nil {
		r.logger.Warn("revert to uploaded lost to concurrent transition",
			"file_upload_id", fileID,
			"error", err,
		)
	}
}

// sampleRows takes the first limit extracted rows as classifier samples.
func sampleRows(result *extraction.Result, limit int) []map[string]string {
	n := min(limit, len(result.Rows))

	samples := make([]map[string]string, 0, n)
	for _, row := range result.Rows[:n] {
		samples = append(samples, row.Values)
	}
	return samples
}

// buildDetections merges the classifier's suggestions with per-column
// profiling statistics computed over the full extracted row set.
func buildDetections(
	result *extraction.Result,
	classification *classifier.Result,
	sampleLimit int,
) []ColumnDetection {
	detections := make([]ColumnDetection, 0, len(classification.Columns))

	for position, suggestion := range classification.Columns {
		nullPct, uniquePct := columnStats(result.Rows, suggestion.SourceColumn)

		detections = append(detections, ColumnDetection{
			SourceColumnName:       suggestion.SourceColumn,
			ColumnPosition:         position,
			DetectedDataType:       suggestion.DataType,
			SampleValues:           columnSamples(result.Rows, suggestion.SourceColumn, sampleLimit),
			NullPercentage:         nullPct,
			UniquePercentage:       uniquePct,
			SuggestedStandardField: suggestion.TargetField,
			ConfidenceScore:        suggestion.Confidence,
			Reasoning:              suggestion.Reasoning,
			AlternativeSuggestions: suggestion.Alternatives,
		})
	}

	return detections
}

func columnStats(rows []extraction.Row, column string) (nullPct, uniquePct int) {
	if len(rows) == 0 {
		return 0, 0
	}

	nulls := 0
	distinct := make(map[string]struct{})

	for _, row := range rows {
		v, ok := row.Values[column]
		if !ok || v == "" {
			nulls++
			continue
		}
		distinct[v] = struct{}{}
	}

	nullPct = nulls * 100 / len(rows)
	uniquePct = len(distinct) * 100 / len(rows)
	return nullPct, uniquePct
}

func columnSamples(rows []extraction.Row, column string, limit int) []string {
	samples := make([]string, 0, limit)
	for _, row := range rows {
		if len(samples) == limit {
			break
		}
		if v, ok := row.Values[column]; ok && v != "" {
			samples = append(samples, v)
		}
	}
	return samples
}

// Gate is the confidence verdict for one analysis run.
type Gate struct {
	// NeedsReview lists source columns below the auto-accept threshold.
	// These suggestions always require a human decision.
	NeedsReview []string `json:"needs_review,omitempty"`

	// AutoConfirm is true when every column clears the auto-confirm
	// threshold, permitting straight-through confirmation.
	AutoConfirm bool `json:"auto_confirm"`
}

// GateDetections applies the confidence thresholds to a run's detections.
// An empty run never auto-confirms.
func GateDetections(detections []ColumnDetection, config Config) Gate {
	gate := Gate{AutoConfirm: len(detections) > 0}

	for _, d := range detections {
		if d.ConfidenceScore < config.AutoAcceptThreshold {
			gate.NeedsReview = append(gate.NeedsReview, d.SourceColumnName)
		}
		if d.ConfidenceScore < config.AutoConfirmThreshold {
			gate.AutoConfirm = false
		}
	}

	return gate
}
