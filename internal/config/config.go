// Package config loads AdmitGuard configuration from YAML with defaults and
// environment overrides. Thresholds live here so operators can retune the
// screening rules without redeploying; each pipeline run takes an immutable
// snapshot via Screening().
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"admitguard/internal/screening"
)

// DefaultFileName is the config file looked up in the working directory
// when --config is not given.
const DefaultFileName = "admitguard.yaml"

// Config holds all AdmitGuard configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Screening thresholds and buffers
	Rules RulesConfig `yaml:"rules"`

	// Candidate store
	Database DatabaseConfig `yaml:"database"`

	// Pipeline execution
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RulesConfig configures the eligibility thresholds. Field names mirror the
// parameter names the operators edit.
type RulesConfig struct {
	MinPercentage       float64 `yaml:"min_percentage"`
	MinCGPA             float64 `yaml:"min_cgpa"`
	ExceptionBufferPct  float64 `yaml:"exception_buffer_pct"`
	ExceptionBufferCGPA float64 `yaml:"exception_buffer_cgpa"`
	MinTestScore        float64 `yaml:"min_test_score"`
	GraduationYearMin   int     `yaml:"graduation_year_min"`
	GraduationYearMax   int     `yaml:"graduation_year_max"`
	MaxExperience       float64 `yaml:"max_experience"`
}

// DatabaseConfig configures the SQLite candidate store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig configures one screening pass.
type PipelineConfig struct {
	// Workers bounds the concurrent classification pool.
	Workers int `yaml:"workers"`
	// RunTimeout bounds a whole pass, parsed as a Go duration.
	RunTimeout string `yaml:"run_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "AdmitGuard",
		Version: "1.0.0",

		Rules: RulesConfig{
			MinPercentage:       60.0,
			MinCGPA:             6.0,
			ExceptionBufferPct:  1.0,
			ExceptionBufferCGPA: 0.1,
			MinTestScore:        40.0,
			GraduationYearMin:   2010,
			GraduationYearMax:   2025,
			MaxExperience:       40.0,
		},

		Database: DatabaseConfig{
			Path: "data/admitguard.db",
		},

		Pipeline: PipelineConfig{
			Workers:    4,
			RunTimeout: "5m",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("ADMITGUARD_DB"); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv("ADMITGUARD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Screening returns the immutable rules snapshot for one run.
func (c *Config) Screening() screening.Rules {
	return screening.Rules{
		MinPercentage:       c.Rules.MinPercentage,
		MinCGPA:             c.Rules.MinCGPA,
		ExceptionBufferPct:  c.Rules.ExceptionBufferPct,
		ExceptionBufferCGPA: c.Rules.ExceptionBufferCGPA,
		MinTestScore:        c.Rules.MinTestScore,
		GraduationYearMin:   c.Rules.GraduationYearMin,
		GraduationYearMax:   c.Rules.GraduationYearMax,
		MaxExperience:       c.Rules.MaxExperience,
	}
}

// GetRunTimeout returns the pipeline run timeout as a duration.
func (c *Config) GetRunTimeout() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.RunTimeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Validate validates the configuration. The rules snapshot is checked
// before any record is classified; an invalid snapshot aborts the run.
func (c *Config) Validate() error {
	if err := c.Screening().Validate(); err != nil {
		return err
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
