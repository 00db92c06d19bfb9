package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/logging"
	"github.com/signalnine/ecoround/simulation"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config is invalid: %v", err)
	}
	if cfg.Match.PlayTo != 13 || cfg.Match.Mode != simulation.FirstTo {
		t.Errorf("Unexpected match defaults: %+v", cfg.Match)
	}
	if cfg.Tournament.DecimalPlaces != 3 {
		t.Errorf("DecimalPlaces = %d, want 3", cfg.Tournament.DecimalPlaces)
	}
	if got := len(cfg.Replicator.Timepoints()); got != 100 {
		t.Errorf("Expected 100 timepoints, got %d", got)
	}
	if cfg.Logging.TraceDir != logging.DefaultTraceDir {
		t.Errorf("TraceDir = %q, want %q", cfg.Logging.TraceDir, logging.DefaultTraceDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecoround.yaml")
	data := `
match:
  mode: halves
  max_money: 16
  starting_money: [2, 1.5]
  loss_bonuses: false
tournament:
  sample_size: 250
  roster: ["short term", "champ"]
replicator:
  horizon: 50
  intervals: 11
  shares:
    champ: 0.25
    short term: 0.75
server:
  write_timeout: 30s
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Match.Mode != simulation.Halves || cfg.Match.MaxMoney != 16 || cfg.Match.LossBonuses {
		t.Errorf("Match section not applied: %+v", cfg.Match)
	}
	if cfg.Match.StartingMoney != [2]float64{2, 1.5} {
		t.Errorf("StartingMoney = %v", cfg.Match.StartingMoney)
	}
	if cfg.Match.PlayTo != 13 {
		t.Errorf("Unset fields should keep defaults, PlayTo = %d", cfg.Match.PlayTo)
	}
	if cfg.Tournament.SampleSize != 250 || len(cfg.Tournament.Roster) != 2 {
		t.Errorf("Tournament section not applied: %+v", cfg.Tournament)
	}
	if cfg.Replicator.Shares["short term"] != 0.75 {
		t.Errorf("Shares = %v", cfg.Replicator.Shares)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadFromFile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("match: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Path != "ecoround.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ECOROUND_MODE", "fixed")
	t.Setenv("ECOROUND_PLAY_TO", "30")
	t.Setenv("ECOROUND_SEED", "99")
	t.Setenv("ECOROUND_LOSS_BONUSES", "0")
	t.Setenv("ECOROUND_LOG_LEVEL", "debug")
	t.Setenv("ECOROUND_STORE_PATH", "/tmp/runs.db")
	t.Setenv("ECOROUND_ADDR", "127.0.0.1:9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Match.Mode != simulation.FixedRounds || cfg.Match.PlayTo != 30 {
		t.Errorf("Match overrides not applied: %+v", cfg.Match)
	}
	if cfg.Tournament.Seed != 99 {
		t.Errorf("Seed = %d", cfg.Tournament.Seed)
	}
	if cfg.Match.LossBonuses {
		t.Error("Expected loss bonuses disabled")
	}
	if cfg.Logging.Level != "debug" || cfg.Store.Path != "/tmp/runs.db" || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("String overrides not applied: %+v %+v %+v", cfg.Logging, cfg.Store, cfg.Server)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("ECOROUND_SAMPLE_SIZE", "lots")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, engine.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Match.Mode = "sudden" }},
		{"zero sample size", func(c *Config) { c.Tournament.SampleSize = 0 }},
		{"zero horizon", func(c *Config) { c.Replicator.Horizon = 0 }},
		{"one interval", func(c *Config) { c.Replicator.Intervals = 1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"negative server cap", func(c *Config) { c.Server.MaxSampleSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, engine.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Match.Mode = simulation.Halves
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	back, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if back.Match.Mode != simulation.Halves || back.Server.Addr != cfg.Server.Addr {
		t.Errorf("Round trip lost data: %+v", back)
	}
}
