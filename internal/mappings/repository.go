package mappings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/uploads"
	"github.com/sifterhq/sifter/pkg/repository"
)

type repo struct {
	db         *sql.DB
	uploads    uploads.System
	classifier classifier.System
	logger     *slog.Logger
	config     Config
}

// New creates a mapping repository implementing the System interface.
func New(
	db *sql.DB,
	up uploads.System,
	cls classifier.System,
	logger *slog.Logger,
	config Config,
) System {
	return &repo{
		db:         db,
		uploads:    up,
		classifier: cls,
		logger:     logger.With("system", "mappings"),
		config:     config,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Detections(ctx context.Context, fileID uuid.UUID) ([]ColumnDetection, error) {
	q := `
		SELECT ` + detectionColumns + `
		FROM column_detections
		WHERE file_upload_id = $1
		ORDER BY column_position`

	detections, err := repository.QueryMany(ctx, r.db, q, []any{fileID}, scanDetection)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	return detections, nil
}

func (r *repo) Confirmed(ctx context.Context, fileID uuid.UUID) ([]UserColumnMapping, error) {
	q := `
		SELECT ` + confirmedColumns + `
		FROM user_column_mappings
		WHERE file_upload_id = $1
		ORDER BY source_column_name`

	confirmed, err := repository.QueryMany(ctx, r.db, q, []any{fileID}, scanConfirmed)
	if err != nil {
		return nil, fmt.Errorf("query confirmed mappings: %w", err)
	}
	return confirmed, nil
}

// replaceDetections atomically swaps the file's detection set so
// re-analysis supersedes rather than appends.
func (r *repo) replaceDetections(
	ctx context.Context,
	fileID uuid.UUID,
	detections []ColumnDetection,
) ([]ColumnDetection, error) {
	q := `
		INSERT INTO column_detections(
			id, file_upload_id, source_column_name, column_position,
			detected_data_type, sample_values, null_percentage, unique_percentage,
			suggested_standard_field, confidence_score, reasoning, alternative_suggestions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + detectionColumns

	stored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]ColumnDetection, error) {
		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM column_detections WHERE file_upload_id = $1",
			fileID,
		); err != nil {
			return nil, fmt.Errorf("clear prior detections: %w", err)
		}

		result := make([]ColumnDetection, 0, len(detections))
		for _, d := range detections {
			samples, err := json.Marshal(d.SampleValues)
			if err != nil {
				return nil, fmt.Errorf("encode sample values: %w", err)
			}
			alternatives, err := json.Marshal(d.AlternativeSuggestions)
			if err != nil {
				return nil, fmt.Errorf("encode alternative suggestions: %w", err)
			}

			args := []any{
				uuid.New(),
				fileID,
				d.SourceColumnName,
				d.ColumnPosition,
				d.DetectedDataType,
				samples,
				d.NullPercentage,
				d.UniquePercentage,
				d.SuggestedStandardField,
				d.ConfidenceScore,
				d.Reasoning,
				alternatives,
			}

			inserted, err := repository.QueryOne(ctx, tx, q, args, scanDetection)
			if err != nil {
				return nil, fmt.Errorf("insert detection %q: %w", d.SourceColumnName, err)
			}
			result = append(result, inserted)
		}
		return result, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return stored, nil
}

func (r *repo) Confirm(
	ctx context.Context,
	fileID uuid.UUID,
	cmd ConfirmCommand,
) (*ConfirmResult, error) {
	if len(cmd.Mappings) == 0 {
		return nil, ErrNoMappings
	}
	if cmd.ConfirmedBy == "" {
		return nil, ErrEmptyPrincipal
	}

	detections, err := r.Detections(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return nil, ErrNoDetections
	}

	detected := make(map[string]struct{}, len(detections))
	for _, d := range detections {
		detected[d.SourceColumnName] = struct{}{}
	}
	for _, m := range cmd.Mappings {
		if _, ok := detected[m.SourceColumn]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, m.SourceColumn)
		}
	}

	q := `
		INSERT INTO user_column_mappings(
			id, file_upload_id, source_column_name, confirmed_standard_field, confirmed_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + confirmedColumns

	confirmed, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]UserColumnMapping, error) {
		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM user_column_mappings WHERE file_upload_id = $1",
			fileID,
		); err != nil {
			return nil, fmt.Errorf("clear prior confirmations: %w", err)
		}

		result := make([]UserColumnMapping, 0, len(cmd.Mappings))
		for _, m := range cmd.Mappings {
			args := []any{uuid.New(), fileID, m.SourceColumn, m.TargetField, cmd.ConfirmedBy}

			inserted, err := repository.QueryOne(ctx, tx, q, args, scanConfirmed)
			if err != nil {
				return nil, fmt.Errorf("insert confirmation %q: %w", m.SourceColumn, err)
			}
			result = append(result, inserted)
		}
		return result, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	up, err := r.uploads.Transition(
		ctx, fileID, uploads.StatusMappingConfirmed,
		uploads.StatusMappingRequired, uploads.StatusMappingConfirmed,
	)
	if err != nil {
		return nil, err
	}

	r.logger.Info("mappings confirmed",
		"file_upload_id", fileID,
		"mappings", len(confirmed),
		"confirmed_by", cmd.ConfirmedBy,
	)

	return &ConfirmResult{
		FileUploadID: fileID,
		Confirmed:    confirmed,
		Status:       up.Status,
	}, nil
}
