// Package exports implements the dashboard sync domain for Sifter. It
// pushes current standardized records to named downstream sinks in
// bounded batches and tracks per-dashboard sync status.
package exports

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/records"
)

// SyncStatus is a dashboard sync run's externally visible state.
type SyncStatus string

// Sync states.
const (
	SyncPending   SyncStatus = "pending"
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

var syncStatuses = []SyncStatus{
	SyncPending,
	SyncRunning,
	SyncCompleted,
	SyncFailed,
}

// ParseSyncStatus validates a string as a known sync status.
func ParseSyncStatus(s string) (SyncStatus, error) {
	v := SyncStatus(s)
	if !slices.Contains(syncStatuses, v) {
		return "", ErrInvalidSyncStatus
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known sync status.
func (s *SyncStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseSyncStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// DashboardSyncStatus tracks sync outcomes for one (company, dashboard)
// pair. One row per pair, updated after every export run.
type DashboardSyncStatus struct {
	ID               uuid.UUID         `json:"id"`
	CompanyID        uuid.UUID         `json:"company_id"`
	DashboardType    records.Dashboard `json:"dashboard_type"`
	LastSyncAt       *time.Time        `json:"last_sync_at"`
	SyncStatus       SyncStatus        `json:"sync_status"`
	RecordsProcessed int               `json:"records_processed"`
	RecordsCreated   int               `json:"records_created"`
	RecordsUpdated   int               `json:"records_updated"`
	RecordsFailed    int               `json:"records_failed"`
	LastError        *string           `json:"last_error"`
	ErrorCount       int               `json:"error_count"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// WriteResult is a sink's accounting for one batch.
type WriteResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Sink is a named downstream destination for standardized records.
// Implementations are registered per dashboard and treated as opaque.
type Sink interface {
	Write(ctx context.Context, batch []records.ProcessedRecord) (WriteResult, error)
}

// ExportResult summarizes one export run.
type ExportResult struct {
	CompanyID uuid.UUID         `json:"company_id"`
	Dashboard records.Dashboard `json:"dashboard"`
	Exported  int               `json:"exported"`
	Failed    int               `json:"failed"`
	Status    SyncStatus        `json:"status"`
}
