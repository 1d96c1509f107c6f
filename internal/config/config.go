package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sifterhq/sifter/internal/exports"
	"github.com/sifterhq/sifter/internal/mappings"
	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/pkg/database"
	"github.com/sifterhq/sifter/pkg/llm"
	"github.com/sifterhq/sifter/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSifterEnv             = "SIFTER_ENV"
	EnvSifterShutdownTimeout = "SIFTER_SHUTDOWN_TIMEOUT"
	EnvSifterVersion         = "SIFTER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SIFTER_DB_HOST",
	Port:            "SIFTER_DB_PORT",
	Name:            "SIFTER_DB_NAME",
	User:            "SIFTER_DB_USER",
	Password:        "SIFTER_DB_PASSWORD",
	SSLMode:         "SIFTER_DB_SSL_MODE",
	MaxOpenConns:    "SIFTER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SIFTER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SIFTER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SIFTER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "SIFTER_STORAGE_CONTAINER_NAME",
	ConnectionString: "SIFTER_STORAGE_CONNECTION_STRING",
}

var llmEnv = &llm.Env{
	BaseURL: "SIFTER_LLM_BASE_URL",
	APIKey:  "SIFTER_LLM_API_KEY",
	Timeout: "SIFTER_LLM_TIMEOUT",
}

var routerEnv = &router.Env{
	StandardModel:       "SIFTER_ROUTER_STANDARD_MODEL",
	PremiumModel:        "SIFTER_ROUTER_PREMIUM_MODEL",
	ComplexityThreshold: "SIFTER_ROUTER_COMPLEXITY_THRESHOLD",
	FallbackThreshold:   "SIFTER_ROUTER_FALLBACK_THRESHOLD",
	DailyBudgetUSD:      "SIFTER_ROUTER_DAILY_BUDGET_USD",
	BudgetPolicy:        "SIFTER_ROUTER_BUDGET_POLICY",
	PremiumConcurrency:  "SIFTER_ROUTER_PREMIUM_CONCURRENCY",
	RetryAttempts:       "SIFTER_ROUTER_RETRY_ATTEMPTS",
	RetryBaseDelay:      "SIFTER_ROUTER_RETRY_BASE_DELAY",
	BreakerTimeout:      "SIFTER_ROUTER_BREAKER_TIMEOUT",
}

var mappingsEnv = &mappings.Env{
	AutoAcceptThreshold:  "SIFTER_MAPPINGS_AUTO_ACCEPT_THRESHOLD",
	AutoConfirmThreshold: "SIFTER_MAPPINGS_AUTO_CONFIRM_THRESHOLD",
	SampleRows:           "SIFTER_MAPPINGS_SAMPLE_ROWS",
}

var exportsEnv = &exports.Env{
	BatchSize:            "SIFTER_EXPORTS_BATCH_SIZE",
	MaxConcurrentBatches: "SIFTER_EXPORTS_MAX_CONCURRENT_BATCHES",
}

// Config is the root configuration for the Sifter service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	LLM             llm.Config      `toml:"llm"`
	Router          router.Config   `toml:"router"`
	Mappings        mappings.Config `toml:"mappings"`
	Exports         exports.Config  `toml:"exports"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SIFTER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSifterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.LLM.Merge(&overlay.LLM)
	c.Router.Merge(&overlay.Router)
	c.Mappings.Merge(&overlay.Mappings)
	c.Exports.Merge(&overlay.Exports)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.LLM.Finalize(llmEnv); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Router.Finalize(routerEnv); err != nil {
		return fmt.Errorf("router: %w", err)
	}
	if err := c.Mappings.Finalize(mappingsEnv); err != nil {
		return fmt.Errorf("mappings: %w", err)
	}
	if err := c.Exports.Finalize(exportsEnv); err != nil {
		return fmt.Errorf("exports: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSifterShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSifterVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSifterEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
