// Package config provides configuration management for ecoround.
//
// Configuration is loaded from a YAML file when one exists, then
// overridden by ECOROUND_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/logging"
	"github.com/signalnine/ecoround/simulation"
)

// DefaultPath is the config file looked for in the working directory.
const DefaultPath = "ecoround.yaml"

// Config is the full ecoround configuration.
type Config struct {
	Match      simulation.MatchConfig     `json:"match" yaml:"match"`
	Tournament evolution.TournamentConfig `json:"tournament" yaml:"tournament"`
	Replicator ReplicatorConfig           `json:"replicator" yaml:"replicator"`
	Logging    LoggingConfig              `json:"logging" yaml:"logging"`
	Store      StoreConfig                `json:"store" yaml:"store"`
	Server     ServerConfig               `json:"server" yaml:"server"`
}

// ReplicatorConfig controls the replicator run that follows a tournament.
type ReplicatorConfig struct {
	// Horizon is the final timepoint; Intervals the number of samples
	// from 0 to Horizon inclusive.
	Horizon   float64 `json:"horizon" yaml:"horizon"`
	Intervals int     `json:"intervals" yaml:"intervals"`

	// Shares maps strategy names to initial shares. Empty means uniform.
	Shares map[string]float64 `json:"shares,omitempty" yaml:"shares,omitempty"`
}

// Timepoints returns the sample times for a replicator run.
func (r ReplicatorConfig) Timepoints() []float64 {
	return evolution.Linspace(0, r.Horizon, r.Intervals)
}

// LoggingConfig controls operational logging.
type LoggingConfig struct {
	// Level is one of "info" (default), "debug" or "trace".
	Level string `json:"level" yaml:"level"`
	// TraceDir receives rounds.jsonl when Level is debug or trace.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty"`
}

// StoreConfig locates the run database.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	// MaxSampleSize caps the per-pair sample size a request may ask for.
	MaxSampleSize int `json:"max_sample_size" yaml:"max_sample_size"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Match:      simulation.DefaultMatchConfig(),
		Tournament: evolution.DefaultTournamentConfig(),
		Replicator: ReplicatorConfig{
			Horizon:   100,
			Intervals: 100,
		},
		Logging: LoggingConfig{
			Level:    "info",
			TraceDir: logging.DefaultTraceDir,
		},
		Store: StoreConfig{
			Path: "ecoround.db",
		},
		Server: ServerConfig{
			Addr:          ":8080",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  5 * time.Minute,
			MaxSampleSize: 10000,
		},
	}
}

// Load reads path if it exists (DefaultPath when empty) and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	config := Default()
	if _, statErr := os.Stat(path); statErr == nil {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile reads a YAML config file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	if err := c.Tournament.Validate(); err != nil {
		return fmt.Errorf("tournament: %w", err)
	}
	if c.Replicator.Horizon <= 0 {
		return fmt.Errorf("%w: replicator horizon must be positive, got %v", engine.ErrConfiguration, c.Replicator.Horizon)
	}
	if c.Replicator.Intervals < 2 {
		return fmt.Errorf("%w: replicator intervals must be at least 2, got %d", engine.ErrConfiguration, c.Replicator.Intervals)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: invalid log level: %s (valid: info, debug, trace, or empty for default)", engine.ErrConfiguration, c.Logging.Level)
	}

	if c.Server.MaxSampleSize < 0 {
		return fmt.Errorf("%w: max_sample_size must be non-negative, got %d", engine.ErrConfiguration, c.Server.MaxSampleSize)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("ECOROUND_MODE"); v != "" {
		config.Match.Mode = simulation.Mode(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ECOROUND_PLAY_TO", &config.Match.PlayTo},
		{"ECOROUND_N", &config.Match.Param},
		{"ECOROUND_SAMPLE_SIZE", &config.Tournament.SampleSize},
		{"ECOROUND_WORKERS", &config.Tournament.Workers},
	}
	for _, o := range ints {
		if v := os.Getenv(o.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q: %v", engine.ErrConfiguration, o.key, v, err)
			}
			*o.dst = n
		}
	}

	if v := os.Getenv("ECOROUND_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ECOROUND_SEED=%q: %v", engine.ErrConfiguration, v, err)
		}
		config.Tournament.Seed = n
	}

	if v := os.Getenv("ECOROUND_LOSS_BONUSES"); v != "" {
		config.Match.LossBonuses = v == "true" || v == "1"
	}

	if v := os.Getenv("ECOROUND_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("ECOROUND_STORE_PATH"); v != "" {
		config.Store.Path = v
	}

	if v := os.Getenv("ECOROUND_ADDR"); v != "" {
		config.Server.Addr = v
	}
	return nil
}
