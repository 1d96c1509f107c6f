package uploads

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/pkg/query"
	"github.com/sifterhq/sifter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "file_uploads", "f").
	Project("id", "ID").
	Project("company_id", "CompanyID").
	Project("original_filename", "OriginalFilename").
	Project("storage_key", "StorageKey").
	Project("file_type", "FileType").
	Project("status", "Status").
	Project("failure_reason", "FailureReason").
	Project("detected_entity_type", "DetectedEntityType").
	Project("row_count", "RowCount").
	Project("column_count", "ColumnCount").
	Project("uploaded_by", "UploadedBy").
	Project("size_bytes", "SizeBytes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for upload queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	CompanyID  *uuid.UUID `json:"company_id,omitempty"`
	Status     *string    `json:"status,omitempty"`
	FileType   *string    `json:"file_type,omitempty"`
	EntityType *string    `json:"entity_type,omitempty"`
	UploadedBy *string    `json:"uploaded_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CompanyID", f.CompanyID).
		WhereEquals("Status", f.Status).
		WhereEquals("FileType", f.FileType).
		WhereEquals("DetectedEntityType", f.EntityType).
		WhereEquals("UploadedBy", f.UploadedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("company_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CompanyID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if t := values.Get("file_type"); t != "" {
		f.FileType = &t
	}

	if e := values.Get("entity_type"); e != "" {
		f.EntityType = &e
	}

	if u := values.Get("uploaded_by"); u != "" {
		f.UploadedBy = &u
	}

	return f
}

func scanUpload(s repository.Scanner) (FileUpload, error) {
	var u FileUpload

	err := s.Scan(
		&u.ID,
		&u.CompanyID,
		&u.OriginalFilename,
		&u.StorageKey,
		&u.FileType,
		&u.Status,
		&u.FailureReason,
		&u.DetectedEntityType,
		&u.RowCount,
		&u.ColumnCount,
		&u.UploadedBy,
		&u.SizeBytes,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func scanRawRow(s repository.Scanner) (RawRow, error) {
	var r RawRow
	var valuesRaw []byte

	if err := s.Scan(&r.FileUploadID, &r.RowNumber, &valuesRaw); err != nil {
		return r, err
	}

	if len(valuesRaw) > 0 {
		if err := json.Unmarshal(valuesRaw, &r.Values); err != nil {
			return r, fmt.Errorf("unmarshal raw_row_data: %w", err)
		}
	}

	if r.Values == nil {
		r.Values = map[string]string{}
	}

	return r, nil
}
