// Command ecoround plays economy-round matches, builds interaction
// matrices and runs replicator dynamics over them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/signalnine/ecoround/config"
	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/logging"
	"github.com/signalnine/ecoround/simulation"
)

// Build information (set by build flags)
var (
	commit = "unknown"
	date   = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ecoround",
		Short: "Economy-round contest simulator",
		Long: `ecoround simulates two-player contests in which each round both players
spend from a money pool and the bigger spend is more likely to win.

It plays single matches, runs round-robin tournaments between spending
strategies, and evolves strategy populations with replicator dynamics.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newStrategiesCmd(),
		newMatchCmd(),
		newTournamentCmd(),
		newReplicatorCmd(),
		newSweepCmd(),
		newCensusCmd(),
		newRunsCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// setup loads and validates the configuration and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	applyMatchFlags(cmd, &cfg.Match)
	applyTournamentFlags(cmd, &cfg.Tournament)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()), nil
}

// addMatchFlags registers the flags that shape a single match.
func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "Match format: first-to, fixed or halves")
	cmd.Flags().Int("play-to", 0, "Points target (first-to) or round count (fixed)")
	cmd.Flags().Int("n", 0, "Strategy parameter n")
	cmd.Flags().Bool("no-loss-bonus", false, "Disable loss bonuses")
}

// applyMatchFlags copies the match flags that were set onto m.
func applyMatchFlags(cmd *cobra.Command, m *simulation.MatchConfig) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		m.Mode = simulation.Mode(mode)
	}
	if flags.Changed("play-to") {
		m.PlayTo, _ = flags.GetInt("play-to")
	}
	if flags.Changed("n") {
		m.Param, _ = flags.GetInt("n")
	}
	if off, _ := flags.GetBool("no-loss-bonus"); off {
		m.LossBonuses = false
	}
}

// addTournamentFlags registers the flags that shape a batch of matches.
func addTournamentFlags(cmd *cobra.Command) {
	cmd.Flags().Int("sample-size", 0, "Matches per strategy pair (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config)")
	cmd.Flags().Int("workers", 0, "Worker goroutines (default from config, 0 = auto)")
}

func applyTournamentFlags(cmd *cobra.Command, t *evolution.TournamentConfig) {
	flags := cmd.Flags()
	if flags.Changed("sample-size") {
		t.SampleSize, _ = flags.GetInt("sample-size")
	}
	if flags.Changed("seed") {
		t.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("workers") {
		t.Workers, _ = flags.GetInt("workers")
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	jsonOut, _ := cmd.Flags().GetBool("json")
	return jsonOut
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
