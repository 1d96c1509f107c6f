// Package classifier determines a file's business entity type and
// suggests source-column to standard-field mappings via a routed model
// call. It is a pure function of its inputs plus the external model:
// persistence of the resulting suggestions belongs to the caller.
package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sifterhq/sifter/internal/prompts"
	"github.com/sifterhq/sifter/internal/router"
)

// Input carries everything the classifier needs for one analysis run.
// Samples is a bounded slice of raw rows, already capped by the caller.
type Input struct {
	Filename       string
	Columns        []string
	Samples        []map[string]string
	CompanyContext string
}

// SecondaryType is an alternative entity classification with its own
// confidence on the canonical 0-100 scale.
type SecondaryType struct {
	EntityType EntityType `json:"entity_type"`
	Confidence int        `json:"confidence"`
}

// Entity is the file-level classification result.
type Entity struct {
	EntityType     EntityType      `json:"entity_type"`
	Confidence     int             `json:"confidence"`
	Reasoning      string          `json:"reasoning"`
	SecondaryTypes []SecondaryType `json:"secondary_types"`
}

// Alternative is a lower-ranked standard field candidate for a column.
type Alternative struct {
	TargetField string `json:"target_field"`
	Confidence  int    `json:"confidence"`
}

// ColumnSuggestion maps one source column onto a standard field.
type ColumnSuggestion struct {
	SourceColumn string        `json:"source_column"`
	TargetField  string        `json:"target_field"`
	DataType     string        `json:"data_type"`
	Confidence   int           `json:"confidence"`
	Reasoning    string        `json:"reasoning"`
	Alternatives []Alternative `json:"alternatives"`
}

// Result is a complete analysis: entity classification plus one
// suggestion per source column, in source order.
type Result struct {
	Entity    Entity             `json:"entity"`
	Columns   []ColumnSuggestion `json:"columns"`
	Escalated bool               `json:"escalated"`
	CostUSD   float64            `json:"cost_usd"`
}

// System defines the public contract for classification operations.
type System interface {
	Classify(ctx context.Context, input Input) (*Result, error)
}

type classifier struct {
	prompts     prompts.System
	router      router.System
	logger      *slog.Logger
	maxTokens   int
	temperature float64
}

// New creates a classifier backed by the given prompt source and model
// router.
func New(ps prompts.System, rs router.System, logger *slog.Logger) System {
	return &classifier{
		prompts:     ps,
		router:      rs,
		logger:      logger.With("system", "classifier"),
		maxTokens:   4096,
		temperature: 0.1,
	}
}

func (c *classifier) Classify(ctx context.Context, input Input) (*Result, error) {
	if len(input.Columns) == 0 {
		return nil, fmt.Errorf("%w: no columns to classify", ErrClassificationFailed)
	}

	complexity := router.Complexity(input.Columns, input.Samples)

	entity, entityRes, err := c.classifyEntity(ctx, input, complexity)
	if err != nil {
		return nil, err
	}

	columns, columnsRes, err := c.classifyColumns(ctx, input, entity.EntityType, complexity)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Entity:    *entity,
		Columns:   columns,
		Escalated: entityRes.escalated || columnsRes.escalated,
		CostUSD:   entityRes.cost + columnsRes.cost,
	}

	c.logger.InfoContext(
		ctx, "classification complete",
		"filename", input.Filename,
		"entity_type", entity.EntityType,
		"entity_confidence", entity.Confidence,
		"columns", len(columns),
		"complexity", complexity,
		"escalated", result.Escalated,
	)

	return result, nil
}

// stageOutcome accumulates routing metadata across an optional escalation.
type stageOutcome struct {
	escalated bool
	cost      float64
}

func (c *classifier) classifyEntity(
	ctx context.Context,
	input Input,
	complexity int,
) (*Entity, *stageOutcome, error) {
	system, err := c.composeSystem(ctx, prompts.StageEntity)
	if err != nil {
		return nil, nil, err
	}

	prompt, err := entityPayload(input)
	if err != nil {
		return nil, nil, err
	}

	outcome := &stageOutcome{}

	entity, err := runStage(ctx, c, system, prompt, complexity, outcome, parseEntity)
	if err != nil {
		return nil, nil, err
	}

	return entity, outcome, nil
}

func (c *classifier) classifyColumns(
	ctx context.Context,
	input Input,
	entityType EntityType,
	complexity int,
) ([]ColumnSuggestion, *stageOutcome, error) {
	system, err := c.composeSystem(ctx, prompts.StageColumns)
	if err != nil {
		return nil, nil, err
	}

	prompt, err := columnsPayload(input, entityType)
	if err != nil {
		return nil, nil, err
	}

	outcome := &stageOutcome{}

	parse := func(content string) ([]ColumnSuggestion, int, error) {
		return parseColumns(content, input.Columns)
	}

	columns, err := runStage(ctx, c, system, prompt, complexity, outcome, parse)
	if err != nil {
		return nil, nil, err
	}

	return columns, outcome, nil
}

// runStage executes one completion, parses it strictly, and performs at
// most one premium escalation when the parsed confidence falls below the
// router's fallback threshold.
func runStage[T any](
	ctx context.Context,
	c *classifier,
	system, prompt string,
	complexity int,
	outcome *stageOutcome,
	parse func(content string) (T, int, error),
) (T, error) {
	var zero T

	res, err := c.router.Complete(ctx, router.Request{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Complexity:  complexity,
	})
	if err != nil {
		return zero, err
	}
	outcome.cost += res.CostUSD

	parsed, confidence, err := parse(res.Response.Content)
	if err != nil {
		return zero, err
	}

	if !c.router.ShouldEscalate(res, confidence) {
		return parsed, nil
	}

	premium := router.TierPremium
	escalatedRes, err := c.router.Complete(ctx, router.Request{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Tier:        &premium,
	})
	if err != nil {
		// the standard-tier result already satisfied the contract
		c.logger.Warn("escalation failed, keeping standard result", "error", err)
		return parsed, nil
	}
	outcome.escalated = true
	outcome.cost += escalatedRes.CostUSD

	escalated, _, err := parse(escalatedRes.Response.Content)
	if err != nil {
		c.logger.Warn("escalated response unparseable, keeping standard result", "error", err)
		return parsed, nil
	}

	return escalated, nil
}
