package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/mappings"
	"github.com/sifterhq/sifter/internal/uploads"
	"github.com/sifterhq/sifter/pkg/pagination"
	"github.com/sifterhq/sifter/pkg/query"
	"github.com/sifterhq/sifter/pkg/repository"
)

type repo struct {
	db         *sql.DB
	uploads    uploads.System
	mappings   mappings.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a record repository implementing the System interface.
func New(
	db *sql.DB,
	up uploads.System,
	maps mappings.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		uploads:    up,
		mappings:   maps,
		logger:     logger.With("system", "records"),
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
) (*pagination.PageResult[ProcessedRecord], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "RecordHash", "EntitySubtype")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*ProcessedRecord, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Process(ctx context.Context, fileID uuid.UUID) (*ProcessResult, error) {
	up, err := r.uploads.Transition(
		ctx, fileID, uploads.StatusProcessing, uploads.StatusMappingConfirmed,
	)
	if err != nil {
		return nil, err
	}

	if up.DetectedEntityType == nil {
		r.fail(ctx, fileID, "no detected entity type")
		return nil, ErrNoEntityType
	}
	entityType, err := classifier.ParseEntityType(*up.DetectedEntityType)
	if err != nil {
		r.fail(ctx, fileID, fmt.Sprintf("unknown entity type %q", *up.DetectedEntityType))
		return nil, ErrNoEntityType
	}

	resolved, err := r.resolveMapping(ctx, fileID)
	if err != nil {
		if errors.Is(err, ErrNoMapping) {
			r.fail(ctx, fileID, "no resolved column mapping")
		}
		return nil, err
	}

	rows, err := r.uploads.Rows(ctx, fileID)
	if err != nil {
		return nil, err
	}

	result, err := r.persistBatch(ctx, up, entityType, resolved, rows)
	if err != nil {
		r.fail(ctx, fileID, fmt.Sprintf("standardization failed: %v", err))
		return nil, err
	}

	// a concurrent cancel between stages surfaces here as a conflict
	final, err := r.uploads.Transition(ctx, fileID, uploads.StatusCompleted, uploads.StatusProcessing)
	if err != nil {
		return nil, err
	}
	result.Status = string(final.Status)

	r.logger.InfoContext(
		ctx, "standardization complete",
		"file_upload_id", fileID,
		"processed", result.Processed,
		"passed", result.Passed,
		"warnings", result.Warnings,
		"failed", result.Failed,
	)

	return result, nil
}

func (r *repo) resolveMapping(ctx context.Context, fileID uuid.UUID) ([]ResolvedColumn, error) {
	detections, err := r.mappings.Detections(ctx, fileID)
	if err != nil {
		return nil, err
	}
	confirmed, err := r.mappings.Confirmed(ctx, fileID)
	if err != nil {
		return nil, err
	}

	resolved := ResolveMapping(detections, confirmed)
	if len(resolved) == 0 {
		return nil, ErrNoMapping
	}
	return resolved, nil
}

// persistBatch standardizes and stores every row in one transaction so
// the record set is fully visible or not at all. Versioning happens per
// record: an existing current row for the same (company, hash) lineage
// is superseded, never deleted.
func (r *repo) persistBatch(
	ctx context.Context,
	up *uploads.FileUpload,
	entityType classifier.EntityType,
	resolved []ResolvedColumn,
	rows []uploads.RawRow,
) (*ProcessResult, error) {
	transformation := make(map[string]string, len(resolved))
	for _, col := range resolved {
		transformation[col.SourceColumn] = col.TargetField
	}

	dashboards := AssignDashboards(entityType)

	result := &ProcessResult{FileUploadID: up.ID}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, row := range rows {
			srow := StandardizeRow(row.Values, resolved, entityType)

			if err := r.insertVersioned(ctx, tx, up, entityType, row, srow, transformation, dashboards); err != nil {
				return struct{}{}, fmt.Errorf("row %d: %w", row.RowNumber, err)
			}

			result.Processed++
			switch srow.Status {
			case ValidationPassed:
				result.Passed++
			case ValidationWarning:
				result.Warnings++
			case ValidationFailed:
				result.Failed++
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *repo) insertVersioned(
	ctx context.Context,
	tx *sql.Tx,
	up *uploads.FileUpload,
	entityType classifier.EntityType,
	row uploads.RawRow,
	srow StandardizedRow,
	transformation map[string]string,
	dashboards []Dashboard,
) error {
	newID := uuid.New()
	version := 1
	var parentID *uuid.UUID

	var currentID uuid.UUID
	var currentVersion int
	err := tx.QueryRowContext(
		ctx,
		`SELECT id, version_number FROM processed_records
		 WHERE company_id = $1 AND record_hash = $2 AND is_current = true
		 FOR UPDATE`,
		up.CompanyID, srow.Hash,
	).Scan(&currentID, &currentVersion)

	switch {
	case err == nil:
		version = currentVersion + 1
		parentID = &currentID
		if _, err := tx.ExecContext(
			ctx,
			"UPDATE processed_records SET is_current = false, superseded_by = $1 WHERE id = $2",
			newID, currentID,
		); err != nil {
			return fmt.Errorf("supersede version %d: %w", currentVersion, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// first version in this lineage
	default:
		return fmt.Errorf("find current version: %w", err)
	}

	standardized, err := json.Marshal(srow.Data)
	if err != nil {
		return fmt.Errorf("encode standardized data: %w", err)
	}
	original, err := json.Marshal(row.Values)
	if err != nil {
		return fmt.Errorf("encode original data: %w", err)
	}
	transformationJSON, err := json.Marshal(transformation)
	if err != nil {
		return fmt.Errorf("encode transformation: %w", err)
	}
	validationErrors, err := json.Marshal(srow.Errors)
	if err != nil {
		return fmt.Errorf("encode validation errors: %w", err)
	}
	dashboardsJSON, err := json.Marshal(dashboards)
	if err != nil {
		return fmt.Errorf("encode dashboards: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO processed_records(
			id, file_upload_id, company_id, source_row_number, record_hash,
			entity_type, standardized_data, original_data, transformation_applied,
			validation_status, validation_errors, data_quality_score,
			target_dashboards, version_number, is_current, parent_record_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, true, $15)`,
		newID,
		up.ID,
		up.CompanyID,
		row.RowNumber,
		srow.Hash,
		string(entityType),
		standardized,
		original,
		transformationJSON,
		string(srow.Status),
		validationErrors,
		srow.Quality,
		dashboardsJSON,
		version,
		parentID,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}

func (r *repo) PendingExport(
	ctx context.Context,
	companyID uuid.UUID,
	dashboard Dashboard,
	limit int,
) ([]ProcessedRecord, error) {
	target, err := json.Marshal([]Dashboard{dashboard})
	if err != nil {
		return nil, fmt.Errorf("encode dashboard filter: %w", err)
	}

	q := `
		SELECT ` + recordColumns + `
		FROM processed_records
		WHERE company_id = $1
		  AND is_current = true
		  AND validation_status = 'passed'
		  AND exported_at IS NULL
		  AND target_dashboards @> $2
		ORDER BY created_at, source_row_number`

	args := []any{companyID, target}
	if limit > 0 {
		q += "\n\t\tLIMIT $3"
		args = append(args, limit)
	}

	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	return records, nil
}

func (r *repo) MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(
		ctx,
		"UPDATE processed_records SET exported_at = $1 WHERE id = ANY($2)",
		at, ids,
	)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// fail records the stage failure reason; a concurrent cancel wins the race.
func (r *repo) fail(ctx context.Context, fileID uuid.UUID, reason string) {
	if err := r.uploads.MarkFailed(ctx, fileID, reason); err != nil {
		r.logger.Warn("mark failed lost to concurrent transition",
			"file_upload_id", fileID,
			"error", err,
		)
	}
}
