// Package uploads implements the file upload domain for Sifter.
// It provides types, data access, and business logic for upload
// registration, the pipeline status state machine, raw row persistence,
// and blob storage integration.
package uploads

import (
	"time"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/extraction"
)

// FileUpload represents a registered upload with its metadata, blob
// storage reference, and pipeline status.
type FileUpload struct {
	ID                 uuid.UUID           `json:"id"`
	CompanyID          uuid.UUID           `json:"company_id"`
	OriginalFilename   string              `json:"original_filename"`
	StorageKey         string              `json:"storage_key"`
	FileType           extraction.FileType `json:"file_type"`
	Status             Status              `json:"status"`
	FailureReason      *string             `json:"failure_reason"`
	DetectedEntityType *string             `json:"detected_entity_type"`
	RowCount           int                 `json:"row_count"`
	ColumnCount        int                 `json:"column_count"`
	UploadedBy         string              `json:"uploaded_by"`
	SizeBytes          int64               `json:"size_bytes"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// RawRow is a persisted extracted row. Values holds the original column
// name → raw string mapping exactly as extracted; missing cells from
// short rows are absent (null) rather than empty strings.
type RawRow struct {
	FileUploadID uuid.UUID         `json:"file_upload_id"`
	RowNumber    int               `json:"row_number"`
	Values       map[string]string `json:"values"`
}

// CreateCommand carries the data needed to upload and register a new file.
// Data holds the raw file bytes. UploadedBy identifies the principal
// performing the upload; the core never resolves identity itself.
type CreateCommand struct {
	Data       []byte
	Filename   string
	FileType   extraction.FileType
	CompanyID  uuid.UUID
	UploadedBy string
	Priority   int
}
