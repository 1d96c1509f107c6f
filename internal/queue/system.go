package queue

import (
	"context"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/pkg/pagination"
)

// System defines queue operations. Mutations are keyed by file upload
// rather than entry id: each acts on the file's single active entry.
type System interface {
	// Handler returns the HTTP handler for this system.
	Handler() *Handler

	// List returns a paginated slice of entries matching the filters.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error)

	// Find returns an entry by id.
	Find(ctx context.Context, id uuid.UUID) (*Entry, error)

	// FindActive returns the file's active entry, if any.
	FindActive(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error)

	// Enqueue creates an active entry for a file. A file may hold only
	// one active entry at a time.
	Enqueue(ctx context.Context, cmd EnqueueCommand) (*Entry, error)

	// Start marks the file's queued entry as processing.
	Start(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error)

	// Release returns the file's processing entry to queued after a
	// stage finishes with later stages still pending.
	Release(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error)

	// SetEntityType records the classified entity on the file's active
	// entry.
	SetEntityType(ctx context.Context, fileUploadID uuid.UUID, entityType string) error

	// Complete marks the file's processing entry as completed.
	Complete(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error)

	// Fail marks the file's active entry as failed with a reason.
	Fail(ctx context.Context, fileUploadID uuid.UUID, reason string) (*Entry, error)

	// Cancel marks the file's active entry as cancelled.
	Cancel(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error)
}
