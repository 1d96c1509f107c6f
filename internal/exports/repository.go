package exports

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sifterhq/sifter/internal/records"
	"github.com/sifterhq/sifter/internal/uploads"
	"github.com/sifterhq/sifter/pkg/repository"
)

const syncColumns = `id, company_id, dashboard_type, last_sync_at, sync_status,
		records_processed, records_created, records_updated, records_failed,
		last_error, error_count, updated_at`

type repo struct {
	db       *sql.DB
	records  records.System
	uploads  uploads.System
	registry *Registry
	logger   *slog.Logger
	config   Config
}

// New creates an export repository implementing the System interface.
func New(
	db *sql.DB,
	recs records.System,
	up uploads.System,
	registry *Registry,
	logger *slog.Logger,
	config Config,
) System {
	return &repo{
		db:       db,
		records:  recs,
		uploads:  up,
		registry: registry,
		logger:   logger.With("system", "exports"),
		config:   config,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) SyncStatuses(ctx context.Context, companyID uuid.UUID) ([]DashboardSyncStatus, error) {
	q := `
		SELECT ` + syncColumns + `
		FROM dashboard_sync_status
		WHERE company_id = $1
		ORDER BY dashboard_type`

	statuses, err := repository.QueryMany(ctx, r.db, q, []any{companyID}, scanSyncStatus)
	if err != nil {
		return nil, fmt.Errorf("query sync statuses: %w", err)
	}
	return statuses, nil
}

// runTally accumulates batch outcomes across concurrent writes.
type runTally struct {
	mu        sync.Mutex
	created   int
	updated   int
	failed    int
	errors    int
	lastError string
	fileIDs   map[uuid.UUID]struct{}
}

func (t *runTally) success(result WriteResult, batch []records.ProcessedRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.created += result.Created
	t.updated += result.Updated
	t.failed += result.Failed
	for _, rec := range batch {
		t.fileIDs[rec.FileUploadID] = struct{}{}
	}
}

func (t *runTally) failure(size int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failed += size
	t.errors++
	t.lastError = err.Error()
}

func (t *runTally) partial(result WriteResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failed += result.Failed
	t.errors++
	t.lastError = fmt.Sprintf("sink rejected %d records", result.Failed)
}

func (r *repo) Export(
	ctx context.Context,
	companyID uuid.UUID,
	dashboard records.Dashboard,
	batchSize int,
) (*ExportResult, error) {
	if companyID == uuid.Nil {
		return nil, ErrEmptyCompany
	}

	sink, ok := r.registry.Get(dashboard)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSink, dashboard)
	}

	if batchSize <= 0 {
		batchSize = r.config.BatchSize
	}

	if err := r.markRunning(ctx, companyID, dashboard); err != nil {
		return nil, err
	}

	pending, err := r.records.PendingExport(ctx, companyID, dashboard, 0)
	if err != nil {
		r.finish(ctx, companyID, dashboard, SyncFailed, &runTally{errors: 1, lastError: err.Error()})
		return nil, err
	}

	tally := &runTally{fileIDs: make(map[uuid.UUID]struct{})}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.MaxConcurrentBatches)

	for start := 0; start < len(pending); start += batchSize {
		batch := pending[start:min(start+batchSize, len(pending))]

		g.Go(func() error {
			result, err := sink.Write(gctx, batch)
			if err != nil {
				// partial failure: the run continues with other batches
				r.logger.Warn("batch export failed",
					"dashboard", dashboard,
					"records", len(batch),
					"error", err,
				)
				tally.failure(len(batch), err)
				return nil
			}

			if result.Failed > 0 {
				// the sink cannot say which records it rejected, so the
				// whole batch stays pending and the next run redelivers it;
				// sinks upsert, so the accepted records are safe to resend
				r.logger.Warn("sink rejected part of batch",
					"dashboard", dashboard,
					"records", len(batch),
					"rejected", result.Failed,
				)
				tally.partial(result)
				return nil
			}

			ids := make([]uuid.UUID, 0, len(batch))
			for _, rec := range batch {
				ids = append(ids, rec.ID)
			}
			if err := r.records.MarkExported(gctx, ids, time.Now().UTC()); err != nil {
				tally.failure(len(batch), err)
				return nil
			}

			tally.success(result, batch)
			return nil
		})
	}

	// goroutines never return errors; Wait surfaces context cancellation
	if err := g.Wait(); err != nil {
		r.finish(ctx, companyID, dashboard, SyncFailed, tally)
		return nil, err
	}

	exported := tally.created + tally.updated

	status := SyncCompleted
	if exported == 0 && tally.failed > 0 {
		status = SyncFailed
	}

	r.finish(ctx, companyID, dashboard, status, tally)
	r.markFilesExported(ctx, tally)

	r.logger.InfoContext(
		ctx, "export run complete",
		"company_id", companyID,
		"dashboard", dashboard,
		"exported", exported,
		"failed", tally.failed,
		"status", status,
	)

	return &ExportResult{
		CompanyID: companyID,
		Dashboard: dashboard,
		Exported:  exported,
		Failed:    tally.failed,
		Status:    status,
	}, nil
}

func (r *repo) markRunning(ctx context.Context, companyID uuid.UUID, dashboard records.Dashboard) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO dashboard_sync_status(id, company_id, dashboard_type, sync_status)
		 VALUES ($1, $2, $3, 'running')
		 ON CONFLICT (company_id, dashboard_type)
		 DO UPDATE SET sync_status = 'running', updated_at = now()`,
		uuid.New(), companyID, string(dashboard),
	)
	if err != nil {
		return fmt.Errorf("mark sync running: %w", err)
	}
	return nil
}

func (r *repo) finish(
	ctx context.Context,
	companyID uuid.UUID,
	dashboard records.Dashboard,
	status SyncStatus,
	tally *runTally,
) {
	var lastError *string
	if tally.lastError != "" {
		lastError = &tally.lastError
	}

	processed := tally.created + tally.updated + tally.failed

	_, err := r.db.ExecContext(
		ctx,
		`UPDATE dashboard_sync_status
		 SET sync_status = $3,
		     last_sync_at = $4,
		     records_processed = $5,
		     records_created = $6,
		     records_updated = $7,
		     records_failed = $8,
		     last_error = COALESCE($9, last_error),
		     error_count = error_count + $10,
		     updated_at = now()
		 WHERE company_id = $1 AND dashboard_type = $2`,
		companyID,
		string(dashboard),
		string(status),
		time.Now().UTC(),
		processed,
		tally.created,
		tally.updated,
		tally.failed,
		lastError,
		tally.errors,
	)
	if err != nil {
		r.logger.Warn("sync status update failed",
			"company_id", companyID,
			"dashboard", dashboard,
			"error", err,
		)
	}
}

// markFilesExported moves source files whose records reached a dashboard
// from completed to exported. Files already past completed keep their
// status.
func (r *repo) markFilesExported(ctx context.Context, tally *runTally) {
	for fileID := range tally.fileIDs {
		if _, err := r.uploads.Transition(
			ctx, fileID, uploads.StatusExported, uploads.StatusCompleted,
		); err != nil {
			r.logger.Debug("file already past completed",
				"file_upload_id", fileID,
				"error", err,
			)
		}
	}
}

func scanSyncStatus(s repository.Scanner) (DashboardSyncStatus, error) {
	var d DashboardSyncStatus
	err := s.Scan(
		&d.ID,
		&d.CompanyID,
		&d.DashboardType,
		&d.LastSyncAt,
		&d.SyncStatus,
		&d.RecordsProcessed,
		&d.RecordsCreated,
		&d.RecordsUpdated,
		&d.RecordsFailed,
		&d.LastError,
		&d.ErrorCount,
		&d.UpdatedAt,
	)
	return d, err
}
