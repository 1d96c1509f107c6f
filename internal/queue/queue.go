// Package queue tracks pipeline work items. Each in-flight file carries
// at most one active entry; the entry's status mirrors the file's
// progress through extraction, classification, and standardization so
// external callers can observe queue depth and timing without any
// in-process scheduler.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one tracked work item for a file upload.
type Entry struct {
	ID           uuid.UUID  `json:"id"`
	FileUploadID uuid.UUID  `json:"file_upload_id"`
	CompanyID    uuid.UUID  `json:"company_id"`
	Priority     int        `json:"priority"`
	Status       Status     `json:"status"`
	EntityType   *string    `json:"entity_type"`
	ErrorMessage *string    `json:"error_message"`
	QueuedAt     time.Time  `json:"queued_at"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EnqueueCommand creates a new active entry for a file.
type EnqueueCommand struct {
	FileUploadID uuid.UUID `json:"file_upload_id"`
	CompanyID    uuid.UUID `json:"company_id"`
	Priority     int       `json:"priority"`
}
