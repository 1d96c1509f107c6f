// Package router selects which model tier serves a classification call,
// enforces the daily spend ceiling, and absorbs transient upstream
// failures with retries and a per-tier circuit breaker.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"

	"github.com/sifterhq/sifter/pkg/llm"
)

// Tier identifies a model cost/capability class.
type Tier string

// Valid model tiers.
const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Request describes one completion call to route.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64

	// Complexity is the 0-100 routing score computed from the file's
	// column shape. Ignored when Tier is set.
	Complexity int

	// Tier forces a specific tier, used for the single bounded
	// escalation after a low-confidence standard-tier result.
	Tier *Tier
}

// Result carries the completion plus routing metadata.
type Result struct {
	Response   *llm.Response
	Tier       Tier
	Downgraded bool
	CostUSD    float64
}

// DailyUsage reports the current UTC day's spend against the budget.
type DailyUsage struct {
	Day       string  `json:"day"`
	SpentUSD  float64 `json:"spent_usd"`
	BudgetUSD float64 `json:"budget_usd"`
	Exhausted bool    `json:"exhausted"`
}

// System defines the public contract for model routing operations.
type System interface {
	// Complete routes the request to a tier and executes it with retry
	// and budget accounting.
	Complete(ctx context.Context, req Request) (*Result, error)

	// ShouldEscalate reports whether a standard-tier result with the
	// given 0-100 confidence warrants one premium retry.
	ShouldEscalate(res *Result, confidence int) bool

	Usage() DailyUsage
}

type router struct {
	config   Config
	client   llm.Client
	logger   *slog.Logger
	ledger   ledger
	premium  *semaphore.Weighted
	breakers map[Tier]*gobreaker.CircuitBreaker
}

// New creates a model router from validated config. The premium semaphore
// is shared across every in-flight call for the life of the process.
func New(config Config, client llm.Client, logger *slog.Logger) System {
	breakers := make(map[Tier]*gobreaker.CircuitBreaker)
	for _, tier := range []Tier{TierStandard, TierPremium} {
		breakers[tier] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    string(tier),
			Timeout: config.BreakerTimeoutDuration(),
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}

	return &router{
		config:   config,
		client:   client,
		logger:   logger.With("system", "router"),
		premium:  semaphore.NewWeighted(config.PremiumConcurrency),
		breakers: breakers,
	}
}

func (r *router) Complete(ctx context.Context, req Request) (*Result, error) {
	tier := r.selectTier(req)

	downgraded := false
	if r.exhausted(tier, req) {
		switch r.config.BudgetPolicy {
		case PolicyDeny:
			return nil, ErrBudgetExceeded
		default:
			if tier == TierPremium {
				downgraded = true
			}
			tier = TierStandard
			if r.exhausted(tier, req) {
				return nil, ErrBudgetExceeded
			}
		}
	}

	resp, err := r.call(ctx, tier, req)
	if err != nil {
		return nil, err
	}

	cost := r.cost(tier, resp.Usage)
	spent := r.ledger.add(cost)

	r.logger.InfoContext(
		ctx, "completion routed",
		"tier", tier,
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
		"cost_usd", cost,
		"spent_usd", spent,
		"downgraded", downgraded,
	)

	return &Result{
		Response:   resp,
		Tier:       tier,
		Downgraded: downgraded,
		CostUSD:    cost,
	}, nil
}

func (r *router) ShouldEscalate(res *Result, confidence int) bool {
	if res.Tier == TierPremium || res.Downgraded {
		return false
	}
	return confidence < r.config.FallbackThreshold
}

func (r *router) Usage() DailyUsage {
	day, spent := r.ledger.total()
	return DailyUsage{
		Day:       day,
		SpentUSD:  spent,
		BudgetUSD: r.config.DailyBudgetUSD,
		Exhausted: spent >= r.config.DailyBudgetUSD,
	}
}

func (r *router) selectTier(req Request) Tier {
	if req.Tier != nil {
		return *req.Tier
	}
	if req.Complexity >= r.config.ComplexityThreshold {
		return TierPremium
	}
	return TierStandard
}

// exhausted reports whether the call's estimated cost would push the
// daily total past the budget. The estimate prevents the call whose
// actual cost would land beyond the cap from being silently charged.
func (r *router) exhausted(tier Tier, req Request) bool {
	_, spent := r.ledger.total()
	if spent >= r.config.DailyBudgetUSD {
		return true
	}
	return spent+r.estimate(tier, req) > r.config.DailyBudgetUSD
}

// estimate approximates a call's cost at roughly four characters per
// prompt token and the full MaxTokens output allowance.
func (r *router) estimate(tier Tier, req Request) float64 {
	tc := r.tierConfig(tier)
	promptTokens := float64(len(req.System)+len(req.Prompt)) / 4
	return (promptTokens*tc.InputRate + float64(req.MaxTokens)*tc.OutputRate) / 1000
}

func (r *router) cost(tier Tier, usage llm.Usage) float64 {
	tc := r.tierConfig(tier)
	return (float64(usage.PromptTokens)*tc.InputRate +
		float64(usage.CompletionTokens)*tc.OutputRate) / 1000
}

func (r *router) tierConfig(tier Tier) TierConfig {
	if tier == TierPremium {
		return r.config.Premium
	}
	return r.config.Standard
}

func (r *router) call(ctx context.Context, tier Tier, req Request) (*llm.Response, error) {
	if tier == TierPremium {
		if err := r.premium.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquire premium slot: %w", err)
		}
		defer r.premium.Release(1)
	}

	model := r.tierConfig(tier).Model

	op := func() (*llm.Response, error) {
		v, err := r.breakers[tier].Execute(func() (any, error) {
			return r.client.Complete(ctx, llm.Request{
				Model:       model,
				System:      req.System,
				Prompt:      req.Prompt,
				MaxTokens:   req.MaxTokens,
				Temperature: req.Temperature,
			})
		})
		if err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return v.(*llm.Response), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.config.RetryBaseDelayDuration()

	resp, err := backoff.RetryWithData(
		op,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.config.RetryAttempts-1)), ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s tier: %w", ErrUnavailable, tier, err)
	}

	return resp, nil
}

// retryable reports whether an upstream failure is worth another attempt.
// Contract violations and an open breaker fail fast.
func retryable(err error) bool {
	var se *llm.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, llm.ErrEmptyResponse) {
		return false
	}
	return true
}
