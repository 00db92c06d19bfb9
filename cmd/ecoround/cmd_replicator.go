package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/store"
	"github.com/signalnine/ecoround/wire"
)

func newReplicatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replicator [checkpoint]",
		Short: "Evolve a population over a stored interaction matrix",
		Long: `Run replicator dynamics over an interaction matrix loaded either from a
checkpoint file written by 'ecoround tournament --checkpoint' or from a
stored run (--run).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			runID, _ := cmd.Flags().GetString("run")
			out, _ := cmd.Flags().GetString("out")
			if flags := cmd.Flags(); flags.Changed("horizon") {
				cfg.Replicator.Horizon, _ = flags.GetFloat64("horizon")
			}
			if flags := cmd.Flags(); flags.Changed("intervals") {
				cfg.Replicator.Intervals, _ = flags.GetInt("intervals")
			}

			var m *evolution.InteractionMatrix
			switch {
			case len(args) == 1 && runID != "":
				return fmt.Errorf("give either a checkpoint or --run, not both")
			case len(args) == 1:
				cp, err := evolution.LoadCheckpoint(args[0])
				if err != nil {
					return err
				}
				m = cp.Matrix
			case runID != "":
				db, err := store.Open(cfg.Store.Path)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				defer db.Close()
				rec, err := store.LoadRecord(cmd.Context(), db, runID)
				if err != nil {
					return err
				}
				m = rec.Matrix
			default:
				return fmt.Errorf("a checkpoint file or --run is required")
			}

			traj, err := evolveMatrix(cfg, m)
			if err != nil {
				return err
			}
			logger.Debug("replicator complete",
				"strategies", m.Size(),
				"timepoints", len(traj.Times),
				"leader", traj.Final().Best().Name)

			if out != "" {
				if err := os.WriteFile(out, wire.EncodeTrajectory(traj), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), traj)
			}
			printStats(cmd.OutOrStdout(), traj.Stats())
			printRanking(cmd.OutOrStdout(), traj)
			return nil
		},
	}
	cmd.Flags().String("run", "", "Load the matrix from this stored run")
	cmd.Flags().Float64("horizon", 0, "Final timepoint (default from config)")
	cmd.Flags().Int("intervals", 0, "Number of timepoints (default from config)")
	cmd.Flags().String("out", "", "Write the trajectory as FlatBuffers to this file")
	return cmd
}

// printStats prints about ten evenly spaced timepoints plus the last one.
func printStats(w io.Writer, stats []evolution.TimepointStats) {
	every := max(len(stats)/10, 1)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLEADER\tSHARE\tDIVERSITY\tSURVIVORS")
	for k, s := range stats {
		if k%every != 0 && k != len(stats)-1 {
			continue
		}
		fmt.Fprintf(tw, "%.2f\t%s\t%.4f\t%.3f\t%d\n", s.Time, s.Leader, s.LeadShare, s.Diversity, s.Survivors)
	}
	tw.Flush()
}
