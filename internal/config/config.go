package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "edgarcli/internal/errors"
)

// Config represents the complete application configuration. Components
// receive the sections they need at construction; nothing reads process
// globals mid-algorithm.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Entities []EntityConfig `yaml:"entities" envconfig:"-"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
}

// PipelineConfig contains the temporal-alignment and labeling parameters.
type PipelineConfig struct {
	// LagDays is the disclosure-availability delay: a filing for a
	// period ending E becomes visible on E + LagDays.
	LagDays int `yaml:"lag_days" envconfig:"LAG_DAYS" default:"45" validate:"min=0"`
	// MaxForwardFillDays bounds how long a filing's values stay current
	// absent a newer filing.
	MaxForwardFillDays int `yaml:"max_forward_fill_days" envconfig:"MAX_FORWARD_FILL_DAYS" default:"400" validate:"gt=0"`
	// HorizonDays is the label horizon in daily-grid positions.
	HorizonDays int `yaml:"horizon_days" envconfig:"HORIZON_DAYS" default:"63" validate:"gt=0"`
	// Epsilon is added to ratio denominators to avoid division by zero.
	Epsilon float64 `yaml:"epsilon" envconfig:"EPSILON" default:"1e-9" validate:"gt=0"`
	// TargetUnit selects the reporting unit consulted during extraction.
	TargetUnit string `yaml:"target_unit" envconfig:"TARGET_UNIT" default:"USD" validate:"required"`
	// CrossQuarterFill enables the optional forward-fill of missing
	// quarters in the combined fundamentals table. Off by default.
	CrossQuarterFill bool `yaml:"cross_quarter_fill" envconfig:"CROSS_QUARTER_FILL" default:"false"`
	// BenchmarkSymbol names the benchmark price series.
	BenchmarkSymbol string `yaml:"benchmark_symbol" envconfig:"BENCHMARK_SYMBOL" default:"SPY" validate:"required"`
}

// EntityConfig binds a ticker to its CIK in the configuration file.
type EntityConfig struct {
	Ticker string `yaml:"ticker" validate:"required"`
	CIK    string `yaml:"cik" validate:"required"`
}

// PathsConfig contains the data directory tree
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	RawDir      string `yaml:"raw_dir" envconfig:"RAW_DIR" default:"data/raw"`
	BronzeDir   string `yaml:"bronze_dir" envconfig:"BRONZE_DIR" default:"data/bronze"`
	SilverDir   string `yaml:"silver_dir" envconfig:"SILVER_DIR" default:"data/silver"`
	FeaturesDir string `yaml:"features_dir" envconfig:"FEATURES_DIR" default:"data/features"`
	PricesDir   string `yaml:"prices_dir" envconfig:"PRICES_DIR" default:"data"`
	SharesFile  string `yaml:"shares_file" envconfig:"SHARES_FILE" default:"data/shares.csv"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// ServerConfig contains HTTP server configuration for cmd/web
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gt=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50" validate:"gt=0"`
}

// DefaultEntities mirrors the ticker universe the pipeline ships with.
// A config file replaces, not extends, this list.
func DefaultEntities() []EntityConfig {
	return []EntityConfig{
		{Ticker: "AAPL", CIK: "0000320193"},
		{Ticker: "MSFT", CIK: "0000789019"},
	}
}

// Load loads configuration from environment variables and an optional
// YAML config file (EDGARCLI_CONFIG, default edgarcli.yaml). Environment
// values take precedence over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("EDGARCLI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		if len(fileCfg.Entities) > 0 {
			cfg.Entities = fileCfg.Entities
		}
	}

	if len(cfg.Entities) == 0 {
		cfg.Entities = DefaultEntities()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against the declared constraints and
// the pipeline's own invariants. A negative lag or a non-positive fill
// window is a startup failure, never a mid-run surprise.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("config validation failed: %v", err))
	}

	seen := make(map[string]bool, len(c.Entities))
	for _, e := range c.Entities {
		if len(e.CIK) != 10 {
			return apperrors.NewConfigError(fmt.Sprintf("entity %s: cik must be 10 digits, got %q", e.Ticker, e.CIK))
		}
		if seen[e.Ticker] {
			return apperrors.NewConfigError(fmt.Sprintf("duplicate entity ticker %s", e.Ticker))
		}
		seen[e.Ticker] = true
	}

	return nil
}

// CIKForTicker resolves a configured ticker to its CIK.
func (c *Config) CIKForTicker(ticker string) (string, bool) {
	for _, e := range c.Entities {
		if e.Ticker == ticker {
			return e.CIK, true
		}
	}
	return "", false
}

// TickerForCIK resolves a CIK (leading zeros ignored) to its ticker.
func (c *Config) TickerForCIK(cik string) (string, bool) {
	stripped := stripLeadingZeros(cik)
	for _, e := range c.Entities {
		if stripLeadingZeros(e.CIK) == stripped {
			return e.Ticker, true
		}
	}
	return "", false
}

func stripLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

func configFilePath() string {
	if path := os.Getenv("EDGARCLI_CONFIG"); path != "" {
		return path
	}
	return "edgarcli.yaml"
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
