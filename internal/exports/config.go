package exports

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds export batching parameters.
type Config struct {
	// BatchSize is the default number of records per sink write.
	BatchSize int `toml:"batch_size"`

	// MaxConcurrentBatches bounds how many batches are in flight per run.
	MaxConcurrentBatches int `toml:"max_concurrent_batches"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BatchSize            string
	MaxConcurrentBatches string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.MaxConcurrentBatches != 0 {
		c.MaxConcurrentBatches = overlay.MaxConcurrentBatches
	}
}

func (c *Config) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.MaxConcurrentBatches == 0 {
		c.MaxConcurrentBatches = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.BatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv(env.MaxConcurrentBatches); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrentBatches = n
		}
	}
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.MaxConcurrentBatches < 1 {
		return fmt.Errorf("max_concurrent_batches must be positive")
	}
	return nil
}
