package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/strategy"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <subject> <opponent>",
		Short: "Measure a strategy's win rate across values of n",
		Long: `Play subject (as player A) against opponent sample-size times for every
strategy parameter n from 0 to play-to minus one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			subject, err := strategy.Lookup(args[0])
			if err != nil {
				return err
			}
			opponent, err := strategy.Lookup(args[1])
			if err != nil {
				return err
			}

			t := evolution.NewTournament(cfg.Tournament, cfg.Match, logger)
			points, err := t.Sweep(cmd.Context(), subject, opponent, evolution.SweepRange(cfg.Match.PlayTo))
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), points)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "N\t%s\t%s\n", subject.Name(), opponent.Name())
			for _, p := range points {
				fmt.Fprintf(tw, "%d\t%.3f\t%.3f\n", p.N, p.SubjectWinRate, p.OpponentWinRate)
			}
			return tw.Flush()
		},
	}
	addMatchFlags(cmd)
	addTournamentFlags(cmd)
	return cmd
}

func newCensusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "census",
		Short: "Count distinct action sequences in random play",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			games, _ := cmd.Flags().GetInt("games")

			t := evolution.NewTournament(cfg.Tournament, cfg.Match, logger)
			result, err := t.Census(cmd.Context(), games)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Games:     %d\n", result.Games)
			fmt.Fprintf(cmd.OutOrStdout(), "Distinct:  %d\n", result.Distinct)
			fmt.Fprintf(cmd.OutOrStdout(), "Longest:   %d rounds\n", result.Longest)
			return nil
		},
	}
	addMatchFlags(cmd)
	cmd.Flags().Int64("seed", 0, "Random seed (default from config)")
	cmd.Flags().Int("workers", 0, "Worker goroutines (default from config, 0 = auto)")
	cmd.Flags().Int("games", 10000, "Random-vs-random games to play")
	return cmd
}
