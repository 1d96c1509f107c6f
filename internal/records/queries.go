package records

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/pkg/query"
	"github.com/sifterhq/sifter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "processed_records", "r").
	Project("id", "ID").
	Project("file_upload_id", "FileUploadID").
	Project("company_id", "CompanyID").
	Project("source_row_number", "SourceRowNumber").
	Project("record_hash", "RecordHash").
	Project("entity_type", "EntityType").
	Project("entity_subtype", "EntitySubtype").
	Project("standardized_data", "StandardizedData").
	Project("original_data", "OriginalData").
	Project("transformation_applied", "TransformationApplied").
	Project("validation_status", "ValidationStatus").
	Project("validation_errors", "ValidationErrors").
	Project("data_quality_score", "DataQualityScore").
	Project("target_dashboards", "TargetDashboards").
	Project("version_number", "VersionNumber").
	Project("is_current", "IsCurrent").
	Project("parent_record_id", "ParentRecordID").
	Project("superseded_by", "SupersededBy").
	Project("exported_at", "ExportedAt").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for record queries.
// Nil fields are ignored.
type Filters struct {
	CompanyID        *uuid.UUID             `json:"company_id,omitempty"`
	FileUploadID     *uuid.UUID             `json:"file_upload_id,omitempty"`
	EntityType       *classifier.EntityType `json:"entity_type,omitempty"`
	ValidationStatus *ValidationStatus      `json:"validation_status,omitempty"`
	IsCurrent        *bool                  `json:"is_current,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CompanyID", f.CompanyID).
		WhereEquals("FileUploadID", f.FileUploadID).
		WhereEquals("EntityType", f.EntityType).
		WhereEquals("ValidationStatus", f.ValidationStatus).
		WhereEquals("IsCurrent", f.IsCurrent)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("company_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.CompanyID = &id
		}
	}

	if v := values.Get("file_upload_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.FileUploadID = &id
		}
	}

	if v := values.Get("entity_type"); v != "" {
		if entityType, err := classifier.ParseEntityType(v); err == nil {
			f.EntityType = &entityType
		}
	}

	if v := values.Get("validation_status"); v != "" {
		if status, err := ParseValidationStatus(v); err == nil {
			f.ValidationStatus = &status
		}
	}

	if v := values.Get("is_current"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsCurrent = &b
		}
	}

	return f
}

const recordColumns = `id, file_upload_id, company_id, source_row_number, record_hash,
		entity_type, entity_subtype, standardized_data, original_data,
		transformation_applied, validation_status, validation_errors,
		data_quality_score, target_dashboards, version_number, is_current,
		parent_record_id, superseded_by, exported_at, created_at`

func scanRecord(s repository.Scanner) (ProcessedRecord, error) {
	var rec ProcessedRecord
	var standardized, original, transformation, validationErrors, dashboards []byte

	err := s.Scan(
		&rec.ID,
		&rec.FileUploadID,
		&rec.CompanyID,
		&rec.SourceRowNumber,
		&rec.RecordHash,
		&rec.EntityType,
		&rec.EntitySubtype,
		&standardized,
		&original,
		&transformation,
		&rec.ValidationStatus,
		&validationErrors,
		&rec.DataQualityScore,
		&dashboards,
		&rec.VersionNumber,
		&rec.IsCurrent,
		&rec.ParentRecordID,
		&rec.SupersededBy,
		&rec.ExportedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return rec, err
	}

	if err := json.Unmarshal(standardized, &rec.StandardizedData); err != nil {
		return rec, fmt.Errorf("decode standardized data: %w", err)
	}
	if err := json.Unmarshal(original, &rec.OriginalData); err != nil {
		return rec, fmt.Errorf("decode original data: %w", err)
	}
	if err := json.Unmarshal(transformation, &rec.TransformationApplied); err != nil {
		return rec, fmt.Errorf("decode transformation: %w", err)
	}
	if err := json.Unmarshal(validationErrors, &rec.ValidationErrors); err != nil {
		return rec, fmt.Errorf("decode validation errors: %w", err)
	}
	if err := json.Unmarshal(dashboards, &rec.TargetDashboards); err != nil {
		return rec, fmt.Errorf("decode target dashboards: %w", err)
	}

	return rec, nil
}
