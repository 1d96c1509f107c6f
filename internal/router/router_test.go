package router_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/pkg/llm"
)

type fakeClient struct {
	calls   atomic.Int64
	respond func(req llm.Request) (*llm.Response, error)
}

func (c *fakeClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	c.calls.Add(1)
	return c.respond(req)
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testConfig(t *testing.T) router.Config {
	t.Helper()

	cfg := router.Config{
		Standard: router.TierConfig{Model: "standard-model", InputRate: 30, OutputRate: 10},
		Premium:  router.TierConfig{Model: "premium-model", InputRate: 30, OutputRate: 10},
		// budget large enough for three $30 calls but not a fourth
		DailyBudgetUSD: 100,
		RetryAttempts:  1,
		RetryBaseDelay: "1ms",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}
	return cfg
}

// respOK reports 1000 prompt tokens and no completion tokens, which at
// the test rates costs exactly $30 per call.
func respOK(req llm.Request) (*llm.Response, error) {
	return &llm.Response{
		Content: "{}",
		Model:   req.Model,
		Usage:   llm.Usage{PromptTokens: 1000, TotalTokens: 1000},
	}, nil
}

func request() router.Request {
	return router.Request{
		System:    "sys",
		Prompt:    "prompt",
		MaxTokens: 1000,
	}
}

func TestSelectTierByComplexity(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name       string
		complexity int
		wantModel  string
	}{
		{"simple file stays standard", 10, "standard-model"},
		{"threshold boundary goes premium", cfg.ComplexityThreshold, "premium-model"},
		{"complex file goes premium", 95, "premium-model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotModel string
			client := &fakeClient{respond: func(req llm.Request) (*llm.Response, error) {
				gotModel = req.Model
				return respOK(req)
			}}
			sys := router.New(cfg, client, discard())

			req := request()
			req.Complexity = tt.complexity

			res, err := sys.Complete(context.Background(), req)
			if err != nil {
				t.Fatalf("complete failed: %v", err)
			}
			if gotModel != tt.wantModel {
				t.Errorf("got model %q, want %q", gotModel, tt.wantModel)
			}
			if res.Downgraded {
				t.Error("unexpected downgrade")
			}
		})
	}
}

func TestForcedTierOverridesComplexity(t *testing.T) {
	cfg := testConfig(t)

	var gotModel string
	client := &fakeClient{respond: func(req llm.Request) (*llm.Response, error) {
		gotModel = req.Model
		return respOK(req)
	}}
	sys := router.New(cfg, client, discard())

	req := request()
	req.Complexity = 0
	premium := router.TierPremium
	req.Tier = &premium

	res, err := sys.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if gotModel != "premium-model" {
		t.Errorf("got model %q, want premium-model", gotModel)
	}
	if res.Tier != router.TierPremium {
		t.Errorf("got tier %s, want premium", res.Tier)
	}
}

func TestBudgetDeniesCallThatWouldExceed(t *testing.T) {
	cfg := testConfig(t)
	cfg.BudgetPolicy = router.PolicyDeny

	client := &fakeClient{respond: respOK}
	sys := router.New(cfg, client, discard())

	// three $30 calls fit under the $100 budget
	for i := range 3 {
		if _, err := sys.Complete(context.Background(), request()); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}

	// the fourth would land at $120; its estimate alone exceeds the
	// remaining headroom, so it is refused before reaching the backend
	_, err := sys.Complete(context.Background(), request())
	if !errors.Is(err, router.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if got := client.calls.Load(); got != 3 {
		t.Errorf("backend called %d times, want 3", got)
	}

	usage := sys.Usage()
	if usage.SpentUSD != 90 {
		t.Errorf("spent %v, want 90", usage.SpentUSD)
	}
}

func TestBudgetDowngradesPremium(t *testing.T) {
	cfg := testConfig(t)
	// premium estimates past the budget immediately; standard is 10x cheaper
	cfg.DailyBudgetUSD = 5
	cfg.Premium.InputRate = 300
	cfg.Premium.OutputRate = 100
	cfg.Standard.InputRate = 3
	cfg.Standard.OutputRate = 1

	var gotModel string
	client := &fakeClient{respond: func(req llm.Request) (*llm.Response, error) {
		gotModel = req.Model
		return respOK(req)
	}}
	sys := router.New(cfg, client, discard())

	req := request()
	req.Complexity = 100

	res, err := sys.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !res.Downgraded {
		t.Error("expected downgrade")
	}
	if res.Tier != router.TierStandard {
		t.Errorf("got tier %s, want standard", res.Tier)
	}
	if gotModel != "standard-model" {
		t.Errorf("got model %q, want standard-model", gotModel)
	}
}

func TestShouldEscalate(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeClient{respond: respOK}
	sys := router.New(cfg, client, discard())

	tests := []struct {
		name       string
		result     *router.Result
		confidence int
		want       bool
	}{
		{"low confidence standard", &router.Result{Tier: router.TierStandard}, 40, true},
		{"boundary confidence stays", &router.Result{Tier: router.TierStandard}, cfg.FallbackThreshold, false},
		{"high confidence standard", &router.Result{Tier: router.TierStandard}, 95, false},
		{"premium never escalates", &router.Result{Tier: router.TierPremium}, 10, false},
		{"downgraded never escalates", &router.Result{Tier: router.TierStandard, Downgraded: true}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sys.ShouldEscalate(tt.result, tt.confidence); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetryAttempts = 3

	client := &fakeClient{respond: func(llm.Request) (*llm.Response, error) {
		return nil, &llm.StatusError{Status: 400, Body: "bad request"}
	}}
	sys := router.New(cfg, client, discard())

	_, err := sys.Complete(context.Background(), request())
	if !errors.Is(err, router.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
}

func TestRetryRepeatsTransientError(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetryAttempts = 3

	client := &fakeClient{respond: func(llm.Request) (*llm.Response, error) {
		return nil, &llm.StatusError{Status: 503, Body: "overloaded"}
	}}
	sys := router.New(cfg, client, discard())

	_, err := sys.Complete(context.Background(), request())
	if !errors.Is(err, router.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := client.calls.Load(); got != 3 {
		t.Errorf("backend called %d times, want 3", got)
	}
}

func TestComplexity(t *testing.T) {
	narrow := []string{"item_name", "sku", "quantity"}
	wide := make([]string, 45)
	for i := range wide {
		wide[i] = "col_" + string(rune('a'+i%26))
	}

	samples := []map[string]string{{}, {}, {}}

	if got := router.Complexity(nil, samples); got != 0 {
		t.Errorf("no columns scored %d, want 0", got)
	}

	low := router.Complexity(narrow, samples)
	high := router.Complexity(wide, samples)
	if low >= high {
		t.Errorf("wide file should outscore narrow: %d vs %d", low, high)
	}

	ambiguous := router.Complexity([]string{"name", "value", "type", "data"}, samples)
	if ambiguous <= router.Complexity([]string{"customer_email", "order_total", "shipping_city", "postal_code"}, samples) {
		t.Error("ambiguous headers should raise the score")
	}

	bounded := router.Complexity(wide, nil)
	if bounded < 0 || bounded > 100 {
		t.Errorf("score %d out of range", bounded)
	}
}
