package mappings

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for mapping domain operations.
type System interface {
	Handler() *Handler

	// Analyze runs the full analysis stage for a file: download, row
	// extraction, classification, and detection replacement. The file's
	// status guards re-entry; a concurrent run or cancel surfaces as a
	// status conflict.
	Analyze(ctx context.Context, fileID uuid.UUID) (*AnalyzeResult, error)

	// Confirm records a human's mapping decisions and moves the file to
	// mapping_confirmed. Confirming an already-confirmed file replaces
	// the prior decisions.
	Confirm(ctx context.Context, fileID uuid.UUID, cmd ConfirmCommand) (*ConfirmResult, error)

	// Detections returns the file's current suggestions in column order.
	Detections(ctx context.Context, fileID uuid.UUID) ([]ColumnDetection, error)

	// Confirmed returns the file's human-confirmed mappings.
	Confirmed(ctx context.Context, fileID uuid.UUID) ([]UserColumnMapping, error)
}
