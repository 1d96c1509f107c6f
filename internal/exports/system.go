package exports

import (
	"context"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/records"
)

// System defines the public contract for export domain operations.
type System interface {
	Handler() *Handler

	// Export pushes the company's pending records for a dashboard to its
	// sink in bounded batches. Safe to re-run: already-exported records
	// are skipped, and partial batch failures continue the run.
	// A non-positive batchSize uses the configured default.
	Export(
		ctx context.Context,
		companyID uuid.UUID,
		dashboard records.Dashboard,
		batchSize int,
	) (*ExportResult, error)

	// SyncStatuses returns the company's per-dashboard sync state.
	SyncStatuses(ctx context.Context, companyID uuid.UUID) ([]DashboardSyncStatus, error)
}
