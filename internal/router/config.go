package router

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Budget exhaustion policies.
const (
	PolicyDowngrade = "downgrade"
	PolicyDeny      = "deny"
)

// TierConfig holds the model identity and token pricing for one tier.
// Rates are USD per 1000 tokens.
type TierConfig struct {
	Model      string  `toml:"model"`
	InputRate  float64 `toml:"input_rate"`
	OutputRate float64 `toml:"output_rate"`
}

// Config holds model routing, budget, and resilience parameters.
type Config struct {
	Standard            TierConfig `toml:"standard"`
	Premium             TierConfig `toml:"premium"`
	ComplexityThreshold int        `toml:"complexity_threshold"`
	FallbackThreshold   int        `toml:"fallback_threshold"`
	DailyBudgetUSD      float64    `toml:"daily_budget_usd"`
	BudgetPolicy        string     `toml:"budget_policy"`
	PremiumConcurrency  int64      `toml:"premium_concurrency"`
	RetryAttempts       int        `toml:"retry_attempts"`
	RetryBaseDelay      string     `toml:"retry_base_delay"`
	BreakerTimeout      string     `toml:"breaker_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	StandardModel       string
	PremiumModel        string
	ComplexityThreshold string
	FallbackThreshold   string
	DailyBudgetUSD      string
	BudgetPolicy        string
	PremiumConcurrency  string
	RetryAttempts       string
	RetryBaseDelay      string
	BreakerTimeout      string
}

// RetryBaseDelayDuration returns RetryBaseDelay as a time.Duration.
func (c *Config) RetryBaseDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBaseDelay)
	return d
}

// BreakerTimeoutDuration returns BreakerTimeout as a time.Duration.
func (c *Config) BreakerTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.BreakerTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// Tier models are validated once here; no per-request model probing occurs.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Standard.Model != "" {
		c.Standard.Model = overlay.Standard.Model
	}
	if overlay.Standard.InputRate != 0 {
		c.Standard.InputRate = overlay.Standard.InputRate
	}
	if overlay.Standard.OutputRate != 0 {
		c.Standard.OutputRate = overlay.Standard.OutputRate
	}
	if overlay.Premium.Model != "" {
		c.Premium.Model = overlay.Premium.Model
	}
	if overlay.Premium.InputRate != 0 {
		c.Premium.InputRate = overlay.Premium.InputRate
	}
	if overlay.Premium.OutputRate != 0 {
		c.Premium.OutputRate = overlay.Premium.OutputRate
	}
	if overlay.ComplexityThreshold != 0 {
		c.ComplexityThreshold = overlay.ComplexityThreshold
	}
	if overlay.FallbackThreshold != 0 {
		c.FallbackThreshold = overlay.FallbackThreshold
	}
	if overlay.DailyBudgetUSD != 0 {
		c.DailyBudgetUSD = overlay.DailyBudgetUSD
	}
	if overlay.BudgetPolicy != "" {
		c.BudgetPolicy = overlay.BudgetPolicy
	}
	if overlay.PremiumConcurrency != 0 {
		c.PremiumConcurrency = overlay.PremiumConcurrency
	}
	if overlay.RetryAttempts != 0 {
		c.RetryAttempts = overlay.RetryAttempts
	}
	if overlay.RetryBaseDelay != "" {
		c.RetryBaseDelay = overlay.RetryBaseDelay
	}
	if overlay.BreakerTimeout != "" {
		c.BreakerTimeout = overlay.BreakerTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Standard.Model == "" {
		c.Standard.Model = "gpt-4o-mini"
	}
	if c.Standard.InputRate == 0 {
		c.Standard.InputRate = 0.00015
	}
	if c.Standard.OutputRate == 0 {
		c.Standard.OutputRate = 0.0006
	}
	if c.Premium.Model == "" {
		c.Premium.Model = "gpt-4o"
	}
	if c.Premium.InputRate == 0 {
		c.Premium.InputRate = 0.0025
	}
	if c.Premium.OutputRate == 0 {
		c.Premium.OutputRate = 0.01
	}
	if c.ComplexityThreshold == 0 {
		c.ComplexityThreshold = 60
	}
	if c.FallbackThreshold == 0 {
		c.FallbackThreshold = 70
	}
	if c.DailyBudgetUSD == 0 {
		c.DailyBudgetUSD = 100
	}
	if c.BudgetPolicy == "" {
		c.BudgetPolicy = PolicyDowngrade
	}
	if c.PremiumConcurrency == 0 {
		c.PremiumConcurrency = 4
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBaseDelay == "" {
		c.RetryBaseDelay = "500ms"
	}
	if c.BreakerTimeout == "" {
		c.BreakerTimeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.StandardModel); v != "" {
		c.Standard.Model = v
	}
	if v := os.Getenv(env.PremiumModel); v != "" {
		c.Premium.Model = v
	}
	if v := os.Getenv(env.ComplexityThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ComplexityThreshold = n
		}
	}
	if v := os.Getenv(env.FallbackThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FallbackThreshold = n
		}
	}
	if v := os.Getenv(env.DailyBudgetUSD); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DailyBudgetUSD = f
		}
	}
	if v := os.Getenv(env.BudgetPolicy); v != "" {
		c.BudgetPolicy = v
	}
	if v := os.Getenv(env.PremiumConcurrency); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.PremiumConcurrency = n
		}
	}
	if v := os.Getenv(env.RetryAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryAttempts = n
		}
	}
	if v := os.Getenv(env.RetryBaseDelay); v != "" {
		c.RetryBaseDelay = v
	}
	if v := os.Getenv(env.BreakerTimeout); v != "" {
		c.BreakerTimeout = v
	}
}

func (c *Config) validate() error {
	if c.Standard.Model == "" {
		return fmt.Errorf("standard tier model required")
	}
	if c.Premium.Model == "" {
		return fmt.Errorf("premium tier model required")
	}
	if c.BudgetPolicy != PolicyDowngrade && c.BudgetPolicy != PolicyDeny {
		return fmt.Errorf("invalid budget_policy: %q", c.BudgetPolicy)
	}
	if c.ComplexityThreshold < 0 || c.ComplexityThreshold > 100 {
		return fmt.Errorf("complexity_threshold out of range: %d", c.ComplexityThreshold)
	}
	if c.FallbackThreshold < 0 || c.FallbackThreshold > 100 {
		return fmt.Errorf("fallback_threshold out of range: %d", c.FallbackThreshold)
	}
	if c.DailyBudgetUSD < 0 {
		return fmt.Errorf("daily_budget_usd must not be negative")
	}
	if c.PremiumConcurrency < 1 {
		return fmt.Errorf("premium_concurrency must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be positive")
	}
	if _, err := time.ParseDuration(c.RetryBaseDelay); err != nil {
		return fmt.Errorf("invalid retry_base_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.BreakerTimeout); err != nil {
		return fmt.Errorf("invalid breaker_timeout: %w", err)
	}
	return nil
}
