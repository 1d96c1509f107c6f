package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sifterhq/sifter/internal/prompts"
)

// composeSystem builds a stage's system prompt by combining its tunable
// instructions with the immutable output specification.
func (c *classifier) composeSystem(ctx context.Context, stage prompts.Stage) (string, error) {
	instructions, err := c.prompts.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := c.prompts.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	return sb.String(), nil
}

type entityRequest struct {
	Filename       string              `json:"filename"`
	Columns        []string            `json:"columns"`
	SampleRows     []map[string]string `json:"sample_rows"`
	CompanyContext string              `json:"company_context,omitempty"`
}

func entityPayload(input Input) (string, error) {
	payload, err := json.MarshalIndent(entityRequest{
		Filename:       input.Filename,
		Columns:        input.Columns,
		SampleRows:     input.Samples,
		CompanyContext: input.CompanyContext,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize entity payload: %w", err)
	}
	return string(payload), nil
}

type columnRequest struct {
	Name    string   `json:"name"`
	Samples []string `json:"samples"`
}

type columnsRequest struct {
	EntityType string          `json:"entity_type"`
	Columns    []columnRequest `json:"columns"`
}

func columnsPayload(input Input, entityType EntityType) (string, error) {
	req := columnsRequest{
		EntityType: string(entityType),
		Columns:    make([]columnRequest, 0, len(input.Columns)),
	}

	for _, col := range input.Columns {
		samples := make([]string, 0, len(input.Samples))
		for _, row := range input.Samples {
			if v, ok := row[col]; ok {
				samples = append(samples, v)
			}
		}
		req.Columns = append(req.Columns, columnRequest{Name: col, Samples: samples})
	}

	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize columns payload: %w", err)
	}
	return string(payload), nil
}
