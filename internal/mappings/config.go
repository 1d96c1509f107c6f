package mappings

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds confidence gating thresholds and the sample size fed to
// the classifier. Thresholds are on the canonical 0-100 scale.
type Config struct {
	// AutoAcceptThreshold is the per-column confidence below which a
	// suggestion always requires human review.
	AutoAcceptThreshold int `toml:"auto_accept_threshold"`

	// AutoConfirmThreshold is the confidence every column must clear for
	// analysis to skip the human step entirely.
	AutoConfirmThreshold int `toml:"auto_confirm_threshold"`

	// SampleRows bounds how many extracted rows are sent to the model.
	SampleRows int `toml:"sample_rows"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AutoAcceptThreshold  string
	AutoConfirmThreshold string
	SampleRows           string
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
	if overlay.AutoAcceptThreshold != 0 {
		c.AutoAcceptThreshold = overlay.AutoAcceptThreshold
	}
	if overlay.AutoConfirmThreshold != 0 {
		c.AutoConfirmThreshold = overlay.AutoConfirmThreshold
	}
	if overlay.SampleRows != 0 {
		c.SampleRows = overlay.SampleRows
	}
}

func (c *Config) loadDefaults() {
	if c.AutoAcceptThreshold == 0 {
		c.AutoAcceptThreshold = 70
	}
	if c.AutoConfirmThreshold == 0 {
		c.AutoConfirmThreshold = 85
	}
	if c.SampleRows == 0 {
		c.SampleRows = 5
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.AutoAcceptThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AutoAcceptThreshold = n
		}
	}
	if v := os.Getenv(env.AutoConfirmThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AutoConfirmThreshold = n
		}
	}
	if v := os.Getenv(env.SampleRows); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SampleRows = n
		}
	}
}

func (c *Config) validate() error {
	if c.AutoAcceptThreshold < 0 || c.AutoAcceptThreshold > 100 {
		return fmt.Errorf("auto_accept_threshold out of range: %d", c.AutoAcceptThreshold)
	}
	if c.AutoConfirmThreshold < 0 || c.AutoConfirmThreshold > 100 {
		return fmt.Errorf("auto_confirm_threshold out of range: %d", c.AutoConfirmThreshold)
	}
	if c.AutoConfirmThreshold < c.AutoAcceptThreshold {
		return fmt.Errorf(
			"auto_confirm_threshold %d below auto_accept_threshold %d",
			c.AutoConfirmThreshold, c.AutoAcceptThreshold,
		)
	}
	if c.SampleRows < 1 {
		return fmt.Errorf("sample_rows must be positive")
	}
	return nil
}
