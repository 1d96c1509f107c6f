package classifier

import (
	"fmt"
	"math"

	"github.com/sifterhq/sifter/pkg/formatting"
)

// Wire contract: the model reports confidence as a 0-1 float. Values are
// converted to the canonical 0-100 integer scale exactly once, here.

type secondaryWire struct {
	EntityType string  `json:"entity_type"`
	Confidence float64 `json:"confidence"`
}

type entityWire struct {
	EntityType     string          `json:"entity_type"`
	Confidence     float64         `json:"confidence"`
	Reasoning      string          `json:"reasoning"`
	SecondaryTypes []secondaryWire `json:"secondary_types"`
}

type alternativeWire struct {
	TargetField string  `json:"target_field"`
	Confidence  float64 `json:"confidence"`
}

type columnWire struct {
	SourceColumn string            `json:"source_column"`
	TargetField  string            `json:"target_field"`
	DataType     string            `json:"data_type"`
	Confidence   float64           `json:"confidence"`
	Reasoning    string            `json:"reasoning"`
	Alternatives []alternativeWire `json:"alternatives"`
}

type columnsWire struct {
	Columns []columnWire `json:"columns"`
}

func parseEntity(content string) (*Entity, int, error) {
	wire, err := formatting.Parse[entityWire](content)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	entityType, err := ParseEntityType(wire.EntityType)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: unknown entity type %q", ErrClassificationFailed, wire.EntityType)
	}

	confidence, err := toScale(wire.Confidence)
	if err != nil {
		return nil, 0, err
	}

	entity := &Entity{
		EntityType:     entityType,
		Confidence:     confidence,
		Reasoning:      wire.Reasoning,
		SecondaryTypes: make([]SecondaryType, 0, len(wire.SecondaryTypes)),
	}

	for _, s := range wire.SecondaryTypes {
		secondaryType, err := ParseEntityType(s.EntityType)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: unknown secondary type %q", ErrClassificationFailed, s.EntityType)
		}
		c, err := toScale(s.Confidence)
		if err != nil {
			return nil, 0, err
		}
		entity.SecondaryTypes = append(entity.SecondaryTypes, SecondaryType{
			EntityType: secondaryType,
			Confidence: c,
		})
	}

	return entity, confidence, nil
}

// parseColumns decodes a column mapping response and enforces exact
// coverage: one suggestion per source column, in source order. The second
// return value is the minimum column confidence, which drives escalation.
func parseColumns(content string, columns []string) ([]ColumnSuggestion, int, error) {
	wire, err := formatting.Parse[columnsWire](content)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	if len(wire.Columns) != len(columns) {
		return nil, 0, fmt.Errorf(
			"%w: expected %d column suggestions, got %d",
			ErrClassificationFailed, len(columns), len(wire.Columns),
		)
	}

	suggestions := make([]ColumnSuggestion, 0, len(columns))
	minConfidence := 100

	for i, cw := range wire.Columns {
		if cw.SourceColumn != columns[i] {
			return nil, 0, fmt.Errorf(
				"%w: suggestion %d names column %q, expected %q",
				ErrClassificationFailed, i, cw.SourceColumn, columns[i],
			)
		}
		if cw.TargetField == "" {
			return nil, 0, fmt.Errorf(
				"%w: empty target field for column %q",
				ErrClassificationFailed, cw.SourceColumn,
			)
		}

		confidence, err := toScale(cw.Confidence)
		if err != nil {
			return nil, 0, err
		}
		if confidence < minConfidence {
			minConfidence = confidence
		}

		suggestion := ColumnSuggestion{
			SourceColumn: cw.SourceColumn,
			TargetField:  cw.TargetField,
			DataType:     cw.DataType,
			Confidence:   confidence,
			Reasoning:    cw.Reasoning,
			Alternatives: make([]Alternative, 0, len(cw.Alternatives)),
		}

		for _, aw := range cw.Alternatives {
			c, err := toScale(aw.Confidence)
			if err != nil {
				return nil, 0, err
			}
			suggestion.Alternatives = append(suggestion.Alternatives, Alternative{
				TargetField: aw.TargetField,
				Confidence:  c,
			})
		}

		suggestions = append(suggestions, suggestion)
	}

	return suggestions, minConfidence, nil
}

// toScale converts a 0-1 wire confidence to the canonical 0-100 integer
// scale. Out-of-range values are contract violations, not clamped.
func toScale(f float64) (int, error) {
	if f < 0 || f > 1 || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: confidence %v out of range", ErrClassificationFailed, f)
	}
	return int(math.Round(f * 100)), nil
}
