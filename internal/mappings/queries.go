package mappings

import (
	"encoding/json"
	"fmt"

	"github.com/sifterhq/sifter/pkg/repository"
)

const detectionColumns = `id, file_upload_id, source_column_name, column_position,
		detected_data_type, sample_values, null_percentage, unique_percentage,
		suggested_standard_field, confidence_score, reasoning,
		alternative_suggestions, created_at`

const confirmedColumns = `id, file_upload_id, source_column_name,
		confirmed_standard_field, confirmed_by, confirmed_at`

func scanDetection(s repository.Scanner) (ColumnDetection, error) {
	var d ColumnDetection
	var samples, alternatives []byte

	err := s.Scan(
		&d.ID,
		&d.FileUploadID,
		&d.SourceColumnName,
		&d.ColumnPosition,
		&d.DetectedDataType,
		&samples,
		&d.NullPercentage,
		&d.UniquePercentage,
		&d.SuggestedStandardField,
		&d.ConfidenceScore,
		&d.Reasoning,
		&alternatives,
		&d.CreatedAt,
	)
	if err != nil {
		return d, err
	}

	if err := json.Unmarshal(samples, &d.SampleValues); err != nil {
		return d, fmt.Errorf("decode sample values: %w", err)
	}
	if err := json.Unmarshal(alternatives, &d.AlternativeSuggestions); err != nil {
		return d, fmt.Errorf("decode alternative suggestions: %w", err)
	}

	return d, nil
}

func scanConfirmed(s repository.Scanner) (UserColumnMapping, error) {
	var m UserColumnMapping
	err := s.Scan(
		&m.ID,
		&m.FileUploadID,
		&m.SourceColumnName,
		&m.ConfirmedStandardField,
		&m.ConfirmedBy,
		&m.ConfirmedAt,
	)
	return m, err
}
