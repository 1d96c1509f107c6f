package prompts

import (
	"encoding/json"
	"slices"
)

// Stage represents a classification stage that a prompt override targets.
type Stage string

// Valid classification stages.
const (
	StageEntity  Stage = "entity"
	StageColumns Stage = "columns"
)

var stages = []Stage{
	StageEntity,
	StageColumns,
}

// Stages returns the list of valid classification stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Stage(raw)
	if !slices.Contains(stages, v) {
		return ErrInvalidStage
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known classification stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
