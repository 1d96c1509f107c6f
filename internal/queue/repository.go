package queue

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/pkg/pagination"
	"github.com/sifterhq/sifter/pkg/query"
	"github.com/sifterhq/sifter/pkg/repository"
)

const entryColumns = `id, file_upload_id, company_id, priority, status, entity_type,
		error_message, queued_at, started_at, completed_at, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a queue repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "queue"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "EntityType", "ErrorMessage")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count queue entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query queue entries: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) FindActive(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error) {
	q := `
		SELECT ` + entryColumns + `
		FROM processing_queue
		WHERE file_upload_id = $1 AND status IN ('queued', 'processing')`

	e, err := repository.QueryOne(ctx, r.db, q, []any{fileUploadID}, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotActive, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Enqueue(ctx context.Context, cmd EnqueueCommand) (*Entry, error) {
	if cmd.FileUploadID == uuid.Nil {
		return nil, ErrEmptyFile
	}
	if cmd.CompanyID == uuid.Nil {
		return nil, ErrEmptyCompany
	}

	q := `
		INSERT INTO processing_queue(id, file_upload_id, company_id, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + entryColumns

	args := []any{uuid.New(), cmd.FileUploadID, cmd.CompanyID, cmd.Priority}

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.DebugContext(
		ctx, "enqueued",
		"file_upload_id", cmd.FileUploadID,
		"priority", cmd.Priority,
	)

	return &e, nil
}

func (r *repo) Start(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error) {
	q := `
		UPDATE processing_queue
		SET status = 'processing',
		    started_at = COALESCE(started_at, now()),
		    updated_at = now()
		WHERE file_upload_id = $1 AND status = 'queued'
		RETURNING ` + entryColumns

	return r.transition(ctx, q, fileUploadID)
}

func (r *repo) Release(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error) {
	q := `
		UPDATE processing_queue
		SET status = 'queued',
		    updated_at = now()
		WHERE file_upload_id = $1 AND status = 'processing'
		RETURNING ` + entryColumns

	return r.transition(ctx, q, fileUploadID)
}

func (r *repo) SetEntityType(ctx context.Context, fileUploadID uuid.UUID, entityType string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE processing_queue
		 SET entity_type = $2, updated_at = now()
		 WHERE file_upload_id = $1 AND status IN ('queued', 'processing')`,
		fileUploadID, entityType,
	)
	if err != nil {
		return fmt.Errorf("record queue entity type: %w", err)
	}
	return nil
}

func (r *repo) Complete(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error) {
	q := `
		UPDATE processing_queue
		SET status = 'completed',
		    completed_at = now(),
		    updated_at = now()
		WHERE file_upload_id = $1 AND status = 'processing'
		RETURNING ` + entryColumns

	return r.transition(ctx, q, fileUploadID)
}

func (r *repo) Fail(ctx context.Context, fileUploadID uuid.UUID, reason string) (*Entry, error) {
	q := `
		UPDATE processing_queue
		SET status = 'failed',
		    error_message = $2,
		    completed_at = now(),
		    updated_at = now()
		WHERE file_upload_id = $1 AND status IN ('queued', 'processing')
		RETURNING ` + entryColumns

	return r.transition(ctx, q, fileUploadID, reason)
}

func (r *repo) Cancel(ctx context.Context, fileUploadID uuid.UUID) (*Entry, error) {
	q := `
		UPDATE processing_queue
		SET status = 'cancelled',
		    completed_at = now(),
		    updated_at = now()
		WHERE file_upload_id = $1 AND status IN ('queued', 'processing')
		RETURNING ` + entryColumns

	return r.transition(ctx, q, fileUploadID)
}

// transition runs a guarded status update. Zero rows means the file has
// no entry in the expected state.
func (r *repo) transition(ctx context.Context, q string, fileUploadID uuid.UUID, extra ...any) (*Entry, error) {
	args := append([]any{fileUploadID}, extra...)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotActive, ErrDuplicate)
	}
	return &e, nil
}
