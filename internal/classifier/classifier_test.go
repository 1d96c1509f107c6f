package classifier_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/prompts"
	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/pkg/llm"
)

type fakePrompts struct {
	prompts.System
}

func (f *fakePrompts) Instructions(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.DefaultInstructions(stage)
}

func (f *fakePrompts) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.DefaultSpec(stage)
}

// scriptedRouter returns canned responses in order and records the tier
// of each request.
type scriptedRouter struct {
	responses []string
	tiers     []router.Tier
	threshold int
	calls     int
}

func (r *scriptedRouter) Complete(_ context.Context, req router.Request) (*router.Result, error) {
	if r.calls >= len(r.responses) {
		return nil, errors.New("no scripted response left")
	}

	tier := router.TierStandard
	if req.Tier != nil {
		tier = *req.Tier
	}
	r.tiers = append(r.tiers, tier)

	content := r.responses[r.calls]
	r.calls++

	return &router.Result{
		Response: &llm.Response{Content: content},
		Tier:     tier,
		CostUSD:  0.01,
	}, nil
}

func (r *scriptedRouter) ShouldEscalate(res *router.Result, confidence int) bool {
	if res.Tier == router.TierPremium || res.Downgraded {
		return false
	}
	return confidence < r.threshold
}

func (r *scriptedRouter) Usage() router.DailyUsage {
	return router.DailyUsage{}
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func input() classifier.Input {
	return classifier.Input{
		Filename: "inventory.csv",
		Columns:  []string{"Item Name", "Qty"},
		Samples: []map[string]string{
			{"Item Name": "Widget", "Qty": "12"},
		},
	}
}

const entityJSON = `{
	"entity_type": "inventory",
	"confidence": 0.92,
	"reasoning": "stock columns",
	"secondary_types": [{"entity_type": "products", "confidence": 0.35}]
}`

const columnsJSON = `{
	"columns": [
		{"source_column": "Item Name", "target_field": "item_name", "data_type": "text", "confidence": 0.9, "reasoning": "direct match"},
		{"source_column": "Qty", "target_field": "quantity", "data_type": "integer", "confidence": 0.85,
		 "alternatives": [{"target_field": "reorder_point", "confidence": 0.2}]}
	]
}`

func TestClassify(t *testing.T) {
	rt := &scriptedRouter{responses: []string{entityJSON, columnsJSON}, threshold: 70}
	sys := classifier.New(&fakePrompts{}, rt, discard())

	result, err := sys.Classify(context.Background(), input())
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	if result.Entity.EntityType != classifier.EntityInventory {
		t.Errorf("got entity %s, want inventory", result.Entity.EntityType)
	}
	if result.Entity.Confidence != 92 {
		t.Errorf("got confidence %d, want 92", result.Entity.Confidence)
	}
	if len(result.Entity.SecondaryTypes) != 1 || result.Entity.SecondaryTypes[0].Confidence != 35 {
		t.Errorf("unexpected secondary types: %v", result.Entity.SecondaryTypes)
	}

	if len(result.Columns) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(result.Columns))
	}
	if result.Columns[0].TargetField != "item_name" || result.Columns[0].Confidence != 90 {
		t.Errorf("unexpected first suggestion: %+v", result.Columns[0])
	}
	if result.Columns[1].DataType != "integer" {
		t.Errorf("unexpected data type: %s", result.Columns[1].DataType)
	}
	if len(result.Columns[1].Alternatives) != 1 || result.Columns[1].Alternatives[0].Confidence != 20 {
		t.Errorf("unexpected alternatives: %v", result.Columns[1].Alternatives)
	}

	if result.Escalated {
		t.Error("high confidence run should not escalate")
	}
	if rt.calls != 2 {
		t.Errorf("router called %d times, want 2", rt.calls)
	}
}

func TestClassifyFencedResponse(t *testing.T) {
	fenced := "```json\n" + entityJSON + "\n```"
	rt := &scriptedRouter{responses: []string{fenced, columnsJSON}, threshold: 70}
	sys := classifier.New(&fakePrompts{}, rt, discard())

	result, err := sys.Classify(context.Background(), input())
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Entity.EntityType != classifier.EntityInventory {
		t.Errorf("got entity %s, want inventory", result.Entity.EntityType)
	}
}

func TestClassifyRejectsUnknownEntity(t *testing.T) {
	rt := &scriptedRouter{
		responses: []string{`{"entity_type": "payroll", "confidence": 0.9}`},
		threshold: 70,
	}
	sys := classifier.New(&fakePrompts{}, rt, discard())

	_, err := sys.Classify(context.Background(), input())
	if !errors.Is(err, classifier.ErrClassificationFailed) {
		t.Fatalf("expected ErrClassificationFailed, got %v", err)
	}
}

func TestClassifyRejectsOutOfRangeConfidence(t *testing.T) {
	tests := []string{
		`{"entity_type": "orders", "confidence": 1.2}`,
		`{"entity_type": "orders", "confidence": -0.1}`,
	}

	for _, resp := range tests {
		rt := &scriptedRouter{responses: []string{resp}, threshold: 70}
		sys := classifier.New(&fakePrompts{}, rt, discard())

		_, err := sys.Classify(context.Background(), input())
		if !errors.Is(err, classifier.ErrClassificationFailed) {
			t.Fatalf("expected ErrClassificationFailed for %s, got %v", resp, err)
		}
	}
}

func TestClassifyRequiresFullColumnCoverage(t *testing.T) {
	partial := `{"columns": [
		{"source_column": "Item Name", "target_field": "item_name", "data_type": "text", "confidence": 0.9}
	]}`

	rt := &scriptedRouter{responses: []string{entityJSON, partial}, threshold: 70}
	sys := classifier.New(&fakePrompts{}, rt, discard())

	_, err := sys.Classify(context.Background(), input())
	if !errors.Is(err, classifier.ErrClassificationFailed) {
		t.Fatalf("expected ErrClassificationFailed, got %v", err)
	}
}

func TestClassifyEscalatesOnce(t *testing.T) {
	lowEntity := `{"entity_type": "orders", "confidence": 0.4, "reasoning": "unsure"}`
	betterEntity := `{"entity_type": "financial", "confidence": 0.88, "reasoning": "ledger columns"}`
	lowColumns := `{"columns": [
		{"source_column": "Item Name", "target_field": "item_name", "data_type": "text", "confidence": 0.5},
		{"source_column": "Qty", "target_field": "quantity", "data_type": "integer", "confidence": 0.5}
	]}`
	betterColumns := `{"columns": [
		{"source_column": "Item Name", "target_field": "item_name", "data_type": "text", "confidence": 0.9},
		{"source_column": "Qty", "target_field": "quantity", "data_type": "integer", "confidence": 0.9}
	]}`

	rt := &scriptedRouter{
		responses: []string{lowEntity, betterEntity, lowColumns, betterColumns},
		threshold: 70,
	}
	sys := classifier.New(&fakePrompts{}, rt, discard())

	result, err := sys.Classify(context.Background(), input())
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	if !result.Escalated {
		t.Error("expected escalation")
	}
	if result.Entity.EntityType != classifier.EntityFinancial {
		t.Errorf("got entity %s, want escalated financial", result.Entity.EntityType)
	}

	wantTiers := []router.Tier{
		router.TierStandard, router.TierPremium,
		router.TierStandard, router.TierPremium,
	}
	if len(rt.tiers) != len(wantTiers) {
		t.Fatalf("got %d calls, want %d", len(rt.tiers), len(wantTiers))
	}
	for i, tier := range wantTiers {
		if rt.tiers[i] != tier {
			t.Errorf("call %d tier %s, want %s", i, rt.tiers[i], tier)
		}
	}
}

func TestClassifyKeepsStandardResultWhenEscalationFails(t *testing.T) {
	low := `{"entity_type": "orders", "confidence": 0.4}`
	highColumns := `{"columns": [
		{"source_column": "Item Name", "target_field": "item_name", "data_type": "text", "confidence": 0.9},
		{"source_column": "Qty", "target_field": "quantity", "data_type": "integer", "confidence": 0.9}
	]}`

	// the escalated response is garbage; the standard result survives
	rt := &scriptedRouter{
		responses: []string{low, "not json at all", highColumns},
		threshold: 70,
	}
	sys := classifier.New(&fakePrompts{}, rt, discard())

	result, err := sys.Classify(context.Background(), input())
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Entity.EntityType != classifier.EntityOrders {
		t.Errorf("got entity %s, want standard-tier orders", result.Entity.EntityType)
	}
	if result.Entity.Confidence != 40 {
		t.Errorf("got confidence %d, want 40", result.Entity.Confidence)
	}
}

func TestClassifyEmptyColumns(t *testing.T) {
	sys := classifier.New(&fakePrompts{}, &scriptedRouter{}, discard())

	_, err := sys.Classify(context.Background(), classifier.Input{Filename: "x.csv"})
	if !errors.Is(err, classifier.ErrClassificationFailed) {
		t.Fatalf("expected ErrClassificationFailed, got %v", err)
	}
}

func TestParseEntityType(t *testing.T) {
	for _, e := range classifier.EntityTypes() {
		got, err := classifier.ParseEntityType(string(e))
		if err != nil {
			t.Fatalf("parse %s: %v", e, err)
		}
		if got != e {
			t.Errorf("got %s, want %s", got, e)
		}
	}

	if _, err := classifier.ParseEntityType("unknown"); !errors.Is(err, classifier.ErrClassificationFailed) {
		t.Error("unknown entity type should fail")
	}
}
