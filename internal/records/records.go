// Package records implements the standardization domain for Sifter. It
// applies a file's resolved column mapping to its raw rows, producing
// typed, validated, quality-scored processed records with append-only
// versioning and deterministic dashboard assignment.
package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
)

// ProcessedRecord is one standardized row. Later versions supersede
// earlier ones but rows are never physically deleted; exactly one
// version per (company, record_hash) lineage is current.
type ProcessedRecord struct {
	ID                    uuid.UUID             `json:"id"`
	FileUploadID          uuid.UUID             `json:"file_upload_id"`
	CompanyID             uuid.UUID             `json:"company_id"`
	SourceRowNumber       int                   `json:"source_row_number"`
	RecordHash            string                `json:"record_hash"`
	EntityType            classifier.EntityType `json:"entity_type"`
	EntitySubtype         *string               `json:"entity_subtype"`
	StandardizedData      map[string]any        `json:"standardized_data"`
	OriginalData          map[string]string     `json:"original_data"`
	TransformationApplied map[string]string     `json:"transformation_applied"`
	ValidationStatus      ValidationStatus      `json:"validation_status"`
	ValidationErrors      []string              `json:"validation_errors"`
	DataQualityScore      int                   `json:"data_quality_score"`
	TargetDashboards      []Dashboard           `json:"target_dashboards"`
	VersionNumber         int                   `json:"version_number"`
	IsCurrent             bool                  `json:"is_current"`
	ParentRecordID        *uuid.UUID            `json:"parent_record_id"`
	SupersededBy          *uuid.UUID            `json:"superseded_by"`
	ExportedAt            *time.Time            `json:"exported_at"`
	CreatedAt             time.Time             `json:"created_at"`
}

// ProcessResult summarizes one standardization run.
type ProcessResult struct {
	FileUploadID uuid.UUID `json:"file_upload_id"`
	Processed    int       `json:"processed"`
	Passed       int       `json:"passed"`
	Warnings     int       `json:"warnings"`
	Failed       int       `json:"failed"`
	Status       string    `json:"status"`
}
