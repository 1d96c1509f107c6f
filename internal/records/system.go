package records

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/pkg/pagination"
)

// System defines the public contract for record domain operations.
type System interface {
	Handler() *Handler

	// Process runs the standardization stage for a mapping-confirmed
	// file: every raw row becomes one versioned ProcessedRecord, with
	// validation failures persisted rather than dropped.
	Process(ctx context.Context, fileID uuid.UUID) (*ProcessResult, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[ProcessedRecord], error)

	Find(ctx context.Context, id uuid.UUID) (*ProcessedRecord, error)

	// PendingExport returns current, validation-passed, not-yet-exported
	// records feeding the given dashboard. A non-positive limit returns
	// everything pending.
	PendingExport(
		ctx context.Context,
		companyID uuid.UUID,
		dashboard Dashboard,
		limit int,
	) ([]ProcessedRecord, error)

	// MarkExported stamps exported_at on the given records so a re-run
	// does not pick them up again.
	MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
