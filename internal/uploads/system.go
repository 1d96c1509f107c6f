package uploads

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/extraction"
	"github.com/sifterhq/sifter/pkg/pagination"
)

// System defines the public contract for upload domain operations.
// Pipeline stages use the guarded transition methods; each checks the
// current status inside the updating statement so a concurrent cancel or
// duplicate stage invocation aborts instead of committing a bad edge.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[FileUpload], error)

	Find(ctx context.Context, id uuid.UUID) (*FileUpload, error)
	Create(ctx context.Context, cmd CreateCommand) (*FileUpload, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Download streams the original uploaded bytes from blob storage.
	Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)

	// ReplaceRows atomically replaces the file's raw rows with the
	// extraction result and records row/column counts. Re-extraction is
	// idempotent: prior rows for the file are removed in the same
	// transaction.
	ReplaceRows(ctx context.Context, id uuid.UUID, result *extraction.Result) error

	// Rows returns the file's raw rows ordered by row number.
	Rows(ctx context.Context, id uuid.UUID) ([]RawRow, error)

	// SampleRows returns up to limit raw rows ordered by row number.
	SampleRows(ctx context.Context, id uuid.UUID, limit int) ([]RawRow, error)

	// Transition moves the upload to target if its current status is one
	// of from, returning ErrStatusConflict otherwise.
	Transition(ctx context.Context, id uuid.UUID, target Status, from ...Status) (*FileUpload, error)

	// MarkFailed transitions any non-terminal upload to failed and
	// persists a human-readable reason.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error

	// SetEntityType records the classifier's detected entity type.
	SetEntityType(ctx context.Context, id uuid.UUID, entityType string) error

	// Cancel moves a non-terminal upload to cancelled.
	Cancel(ctx context.Context, id uuid.UUID) (*FileUpload, error)
}
