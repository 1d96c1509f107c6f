// Package mappings implements the column mapping domain for Sifter. It
// orchestrates file analysis (extraction, classification, detection
// persistence) and human confirmation of the suggested source-column to
// standard-field mappings.
package mappings

import (
	"time"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/uploads"
)

// ColumnDetection is one analysis run's suggested mapping for a source
// column, with profiling statistics computed from the extracted rows.
// Detections are replaced wholesale on re-analysis, never appended.
type ColumnDetection struct {
	ID                     uuid.UUID                `json:"id"`
	FileUploadID           uuid.UUID                `json:"file_upload_id"`
	SourceColumnName       string                   `json:"source_column_name"`
	ColumnPosition         int                      `json:"column_position"`
	DetectedDataType       string                   `json:"detected_data_type"`
	SampleValues           []string                 `json:"sample_values"`
	NullPercentage         int                      `json:"null_percentage"`
	UniquePercentage       int                      `json:"unique_percentage"`
	SuggestedStandardField string                   `json:"suggested_standard_field"`
	ConfidenceScore        int                      `json:"confidence_score"`
	Reasoning              string                   `json:"reasoning"`
	AlternativeSuggestions []classifier.Alternative `json:"alternative_suggestions"`
	CreatedAt              time.Time                `json:"created_at"`
}

// UserColumnMapping is a human-confirmed mapping for a source column.
// When present it is authoritative over the corresponding detection.
type UserColumnMapping struct {
	ID                     uuid.UUID `json:"id"`
	FileUploadID           uuid.UUID `json:"file_upload_id"`
	SourceColumnName       string    `json:"source_column_name"`
	ConfirmedStandardField string    `json:"confirmed_standard_field"`
	ConfirmedBy            string    `json:"confirmed_by"`
	ConfirmedAt            time.Time `json:"confirmed_at"`
}

// MappingInput is one confirmed or overridden column mapping.
type MappingInput struct {
	SourceColumn string `json:"source_column"`
	TargetField  string `json:"target_field"`
}

// ConfirmCommand carries a human's mapping decisions for a file.
// ConfirmedBy identifies the principal; the core never resolves
// identity itself.
type ConfirmCommand struct {
	Mappings    []MappingInput `json:"mappings"`
	ConfirmedBy string         `json:"confirmed_by"`
}

// AnalyzeResult is the outcome of one analysis run.
type AnalyzeResult struct {
	EntityType     classifier.EntityType      `json:"entity_type"`
	Confidence     int                        `json:"confidence"`
	SecondaryTypes []classifier.SecondaryType `json:"secondary_types"`
	Suggestions    []ColumnDetection          `json:"mapping_suggestions"`
	NeedsReview    []string                   `json:"needs_review,omitempty"`
	SampleData     []map[string]string        `json:"sample_data"`
	Status         uploads.Status             `json:"status"`
	RowCount       int                        `json:"row_count"`
	Escalated      bool                       `json:"escalated"`
	CostUSD        float64                    `json:"cost_usd"`
}

// ConfirmResult acknowledges a confirmation with the resulting status.
type ConfirmResult struct {
	FileUploadID uuid.UUID           `json:"file_upload_id"`
	Confirmed    []UserColumnMapping `json:"confirmed"`
	Status       uploads.Status      `json:"status"`
}
