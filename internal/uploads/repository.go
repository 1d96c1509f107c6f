package uploads

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/extraction"
	"github.com/sifterhq/sifter/internal/queue"
	"github.com/sifterhq/sifter/pkg/pagination"
	"github.com/sifterhq/sifter/pkg/query"
	"github.com/sifterhq/sifter/pkg/repository"
	"github.com/sifterhq/sifter/pkg/storage"
)

const uploadColumns = `id, company_id, original_filename, storage_key, file_type, status,
		failure_reason, detected_entity_type, row_count, column_count,
		uploaded_by, size_bytes, created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	queue      queue.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an upload repository implementing the System interface.
// Status changes are mirrored onto the file's processing queue entry.
func New(
	db *sql.DB,
	store storage.System,
	track queue.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		queue:      track,
		logger:     logger.With("system", "uploads"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[FileUpload], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "OriginalFilename", "DetectedEntityType")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count uploads: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanUpload)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*FileUpload, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	u, err := repository.QueryOne(ctx, r.db, q, args, scanUpload)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*FileUpload, error) {
	if cmd.CompanyID == uuid.Nil {
		return nil, ErrEmptyCompany
	}
	if cmd.UploadedBy == "" {
		return nil, ErrEmptyPrincipal
	}

	id := uuid.New()
	key := buildStorageKey(cmd.CompanyID, id, sanitizeFilename(cmd.Filename))

	contentType := "application/octet-stream"
	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), contentType); err != nil {
		return nil, fmt.Errorf("upload file blob: %w", err)
	}

	q := `
		INSERT INTO file_uploads(id, company_id, original_filename, storage_key, file_type, uploaded_by, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + uploadColumns

	insertArgs := []any{
		id,
		cmd.CompanyID,
		cmd.Filename,
		key,
		string(cmd.FileType),
		cmd.UploadedBy,
		int64(len(cmd.Data)),
	}

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FileUpload, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanUpload)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if _, qErr := r.queue.Enqueue(ctx, queue.EnqueueCommand{
		FileUploadID: u.ID,
		CompanyID:    u.CompanyID,
		Priority:     cmd.Priority,
	}); qErr != nil {
		r.logger.Warn("queue enqueue failed", "file_upload_id", u.ID, "error", qErr)
	}

	r.logger.Info("file upload created",
		"id", u.ID,
		"company_id", u.CompanyID,
		"filename", u.OriginalFilename,
		"file_type", u.FileType,
	)
	return &u, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM file_uploads WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, u.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", u.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("file upload deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	u, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := r.storage.Download(ctx, u.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", u.StorageKey, err)
	}

	return body, nil
}

func (r *repo) ReplaceRows(ctx context.Context, id uuid.UUID, result *extraction.Result) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM raw_data_rows WHERE file_upload_id = $1",
			id,
		); err != nil {
			return struct{}{}, fmt.Errorf("clear prior rows: %w", err)
		}

		for _, row := range result.Rows {
			values, err := json.Marshal(row.Values)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal row %d: %w", row.Number, err)
			}

			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO raw_data_rows(file_upload_id, row_number, raw_row_data)
				 VALUES ($1, $2, $3)`,
				id, row.Number, values,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert row %d: %w", row.Number, err)
			}
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE file_uploads
			 SET row_count = $1, column_count = $2, updated_at = NOW()
			 WHERE id = $3`,
			len(result.Rows), len(result.Columns), id,
		); err != nil {
			return struct{}{}, fmt.Errorf("record row counts: %w", err)
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for _, w := range result.Warnings {
		r.logger.Warn("extraction warning",
			"file_upload_id", id,
			"row_number", w.RowNumber,
			"message", w.Message,
		)
	}

	r.logger.Info("raw rows replaced",
		"file_upload_id", id,
		"rows", len(result.Rows),
		"columns", len(result.Columns),
	)
	return nil
}

func (r *repo) Rows(ctx context.Context, id uuid.UUID) ([]RawRow, error) {
	return repository.QueryMany(
		ctx, r.db,
		`SELECT file_upload_id, row_number, raw_row_data
		 FROM raw_data_rows
		 WHERE file_upload_id = $1
		 ORDER BY row_number`,
		[]any{id},
		scanRawRow,
	)
}

func (r *repo) SampleRows(ctx context.Context, id uuid.UUID, limit int) ([]RawRow, error) {
	return repository.QueryMany(
		ctx, r.db,
		`SELECT file_upload_id, row_number, raw_row_data
		 FROM raw_data_rows
		 WHERE file_upload_id = $1
		 ORDER BY row_number
		 LIMIT $2`,
		[]any{id, limit},
		scanRawRow,
	)
}

func (r *repo) Transition(
	ctx context.Context,
	id uuid.UUID,
	target Status,
	from ...Status,
) (*FileUpload, error) {
	for _, f := range from {
		if !f.CanTransition(target) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, f, target)
		}
	}

	fromStrings := make([]string, len(from))
	for i, f := range from {
		fromStrings[i] = string(f)
	}

	q := `
		UPDATE file_uploads
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
		RETURNING ` + uploadColumns

	u, err := repository.QueryOne(
		ctx, r.db, q,
		[]any{string(target), id, fromStrings},
		scanUpload,
	)
	if err != nil {
		if _, findErr := r.Find(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, repository.MapError(err, ErrStatusConflict, ErrDuplicate)
	}

	r.trackQueue(ctx, &u, target)

	r.logger.Info("upload status transition",
		"id", id,
		"status", target,
	)
	return &u, nil
}

// trackQueue mirrors a status change onto the file's active queue entry.
// Stage starts mark the entry processing; intermediate stops release it
// back to queued; completion closes it. Best effort: a file whose entry
// already reached a terminal state is left alone, except that restarting
// a file with no active entry re-enqueues it.
func (r *repo) trackQueue(ctx context.Context, u *FileUpload, target Status) {
	var err error

	switch target {
	case StatusAnalyzing, StatusProcessing:
		_, err = r.queue.Start(ctx, u.ID)
		if errors.Is(err, queue.ErrNotActive) {
			if _, enqErr := r.queue.Enqueue(ctx, queue.EnqueueCommand{
				FileUploadID: u.ID,
				CompanyID:    u.CompanyID,
			}); enqErr == nil {
				_, err = r.queue.Start(ctx, u.ID)
			}
		}
	case StatusUploaded, StatusMappingRequired, StatusMappingConfirmed:
		_, err = r.queue.Release(ctx, u.ID)
	case StatusCompleted:
		_, err = r.queue.Complete(ctx, u.ID)
	default:
		return
	}

	if err != nil {
		r.logger.Debug("queue tracking skipped",
			"file_upload_id", u.ID,
			"status", target,
			"error", err,
		)
	}
}

func (r *repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE file_uploads
		 SET status = $1, failure_reason = $2, updated_at = NOW()
		 WHERE id = $3 AND status NOT IN ($4, $5)`,
		string(StatusFailed), reason, id,
		string(StatusArchived), string(StatusCancelled),
	)
	if err != nil {
		return repository.MapError(err, ErrStatusConflict, ErrDuplicate)
	}

	if _, qErr := r.queue.Fail(ctx, id, reason); qErr != nil {
		r.logger.Debug("queue fail skipped", "file_upload_id", id, "error", qErr)
	}

	r.logger.Warn("upload failed", "id", id, "reason", reason)
	return nil
}

func (r *repo) SetEntityType(ctx context.Context, id uuid.UUID, entityType string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE file_uploads
		 SET detected_entity_type = $1, updated_at = NOW()
		 WHERE id = $2`,
		entityType, id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if qErr := r.queue.SetEntityType(ctx, id, entityType); qErr != nil {
		r.logger.Debug("queue entity type skipped", "file_upload_id", id, "error", qErr)
	}
	return nil
}

func (r *repo) Cancel(ctx context.Context, id uuid.UUID) (*FileUpload, error) {
	q := `
		UPDATE file_uploads
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status NOT IN ($3, $4)
		RETURNING ` + uploadColumns

	u, err := repository.QueryOne(
		ctx, r.db, q,
		[]any{string(StatusCancelled), id, string(StatusArchived), string(StatusCancelled)},
		scanUpload,
	)
	if err != nil {
		if _, findErr := r.Find(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, repository.MapError(err, ErrStatusConflict, ErrDuplicate)
	}

	if _, qErr := r.queue.Cancel(ctx, id); qErr != nil {
		r.logger.Debug("queue cancel skipped", "file_upload_id", id, "error", qErr)
	}

	r.logger.Info("upload cancelled", "id", id)
	return &u, nil
}

func buildStorageKey(companyID, id uuid.UUID, filename string) string {
	return fmt.Sprintf("uploads/%s/%s/%s", companyID, id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "upload"
	}
	return url.PathEscape(name)
}
