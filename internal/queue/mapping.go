package queue

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/pkg/query"
	"github.com/sifterhq/sifter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "processing_queue", "q").
	Project("id", "ID").
	Project("file_upload_id", "FileUploadID").
	Project("company_id", "CompanyID").
	Project("priority", "Priority").
	Project("status", "Status").
	Project("entity_type", "EntityType").
	Project("error_message", "ErrorMessage").
	Project("queued_at", "QueuedAt").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Queue listing favors priority, then arrival order.
var defaultSort = []query.SortField{
	{Field: "Priority", Descending: true},
	{Field: "QueuedAt"},
}

// Filters contains optional filtering criteria for queue queries.
// Nil fields are ignored.
type Filters struct {
	CompanyID    *uuid.UUID `json:"company_id,omitempty"`
	FileUploadID *uuid.UUID `json:"file_upload_id,omitempty"`
	Status       *string    `json:"status,omitempty"`
	EntityType   *string    `json:"entity_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CompanyID", f.CompanyID).
		WhereEquals("FileUploadID", f.FileUploadID).
		WhereEquals("Status", f.Status).
		WhereEquals("EntityType", f.EntityType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("company_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CompanyID = &id
		}
	}

	if v := values.Get("file_upload_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.FileUploadID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if e := values.Get("entity_type"); e != "" {
		f.EntityType = &e
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry

	err := s.Scan(
		&e.ID,
		&e.FileUploadID,
		&e.CompanyID,
		&e.Priority,
		&e.Status,
		&e.EntityType,
		&e.ErrorMessage,
		&e.QueuedAt,
		&e.StartedAt,
		&e.CompletedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	return e, err
}
