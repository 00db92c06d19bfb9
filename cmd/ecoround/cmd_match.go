package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalnine/ecoround/config"
	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/logging"
	"github.com/signalnine/ecoround/simulation"
	"github.com/signalnine/ecoround/strategy"
	"github.com/signalnine/ecoround/wire"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <strategy-a> <strategy-b>",
		Short: "Play one match and print its history",
		Long: `Play a single match between two registered strategies, the first as
player A, and print the round-by-round history.

Strategy names containing spaces must be quoted. Run 'ecoround strategies'
for the list.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")

			a, err := strategy.Lookup(args[0])
			if err != nil {
				return err
			}
			b, err := strategy.Lookup(args[1])
			if err != nil {
				return err
			}

			result, err := simulation.PlayMatch(a, b, cfg.Match, engine.NewSource(cfg.Tournament.Seed))
			if err != nil {
				return err
			}
			logger.Debug("match complete",
				"a", a.Name(),
				"b", b.Name(),
				"points", result.Points,
				"rounds", result.Rounds)
			traceMatch(cmd.Context(), cfg, logger, result)

			if out != "" {
				if err := os.WriteFile(out, wire.EncodeMatch(result), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printHistory(cmd.OutOrStdout(), result)
			return nil
		},
	}
	addMatchFlags(cmd)
	cmd.Flags().Int64("seed", 0, "Random seed (default from config)")
	cmd.Flags().String("out", "", "Also write the match as FlatBuffers to this file")
	return cmd
}

// traceMatch logs every played round at trace level and appends it to the
// round trace file when tracing is enabled.
func traceMatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, result simulation.MatchResult) {
	tracer := logging.NewRoundTracer(cfg.Logging.TraceDir, cfg.Logging.Level)
	if tracer == nil && logging.ParseLevel(cfg.Logging.Level) < slog.LevelInfo {
		logger.Warn("round trace disabled: cannot open rounds.jsonl", "dir", cfg.Logging.TraceDir)
	}
	defer tracer.Close()

	for _, s := range result.History {
		c := s.Choice
		if c == nil {
			continue
		}
		logger.Log(ctx, logging.LevelTrace, "round",
			"half", c.Half,
			"round", c.Round,
			"actions", c.Actions,
			"roll", c.Roll,
			"winner", c.Winner)
		tracer.Log(map[string]any{
			"a":          result.Players[0],
			"b":          result.Players[1],
			"half":       c.Half,
			"round":      c.Round,
			"actions":    c.Actions,
			"roll":       c.Roll,
			"winner":     c.Winner,
			"points":     s.Points,
			"resources":  s.Resources,
			"loss_bonus": s.LossBonus,
		})
	}
}

func printHistory(w io.Writer, result simulation.MatchResult) {
	fmt.Fprintf(w, "%s (A) vs %s (B)\n\n", result.Players[0], result.Players[1])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HALF\tROUND\tA BUYS\tB BUYS\tROLL\tWINNER\tSCORE\tMONEY A\tMONEY B")
	for _, s := range result.History {
		c := s.Choice
		if c == nil {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.3f\t%s\t%d-%d\t%.1f\t%.1f\n",
			c.Half, c.Round,
			engine.Action(c.Actions[0]), engine.Action(c.Actions[1]),
			c.Roll, slotName(c.Winner),
			s.Points[0], s.Points[1],
			s.Resources[0], s.Resources[1])
	}
	tw.Flush()

	fmt.Fprintf(w, "\nFinal: %d-%d after %d rounds, %s\n",
		result.Points[0], result.Points[1], result.Rounds, outcome(result))
}

func slotName(s engine.Slot) string {
	if s == engine.PlayerA {
		return "A"
	}
	return "B"
}

func outcome(result simulation.MatchResult) string {
	switch result.WinnerID {
	case 0:
		return result.Players[0] + " wins"
	case 1:
		return result.Players[1] + " wins"
	default:
		return "draw"
	}
}
