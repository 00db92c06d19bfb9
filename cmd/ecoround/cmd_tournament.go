package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalnine/ecoround/config"
	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/simulation"
	"github.com/signalnine/ecoround/store"
	"github.com/signalnine/ecoround/strategy"
	"github.com/signalnine/ecoround/wire"
)

func newTournamentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Build the interaction matrix of a strategy roster",
		Long: `Play every pair of strategies in the roster sample-size times, the
earlier strategy as player A, and print the resulting interaction matrix:
entry (i, j) is the share of their matches strategy i won, so (i, j) and
(j, i) come from the same sample.

With --evolve the matrix is followed by a replicator-dynamics run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if names, _ := cmd.Flags().GetStringSlice("roster"); len(names) > 0 {
				cfg.Tournament.Roster = names
			}
			evolve, _ := cmd.Flags().GetBool("evolve")
			save, _ := cmd.Flags().GetBool("save")
			checkpoint, _ := cmd.Flags().GetString("checkpoint")
			out, _ := cmd.Flags().GetString("out")

			roster, err := strategy.ResolveRoster(cfg.Tournament.Roster, cfg.Match.Mode == simulation.Halves)
			if err != nil {
				return err
			}
			var shares []float64
			if evolve {
				if shares, err = evolution.ResolveShares(evolution.RosterNames(roster), cfg.Replicator.Shares); err != nil {
					return err
				}
			}

			t := evolution.NewTournament(cfg.Tournament, cfg.Match, logger)
			recorder := &store.Recorder{}
			progress := newProgress(cmd.ErrOrStderr(), len(roster)*(len(roster)-1), !jsonOutput(cmd))
			t.OnPairComplete = func(r evolution.PairResult) {
				recorder.Observe(r)
				progress.step()
			}

			m, err := t.InteractionMatrix(cmd.Context(), roster)
			progress.done()
			if err != nil {
				return err
			}

			var traj *evolution.Trajectory
			if evolve {
				if traj, err = evolution.Evolve(m, shares, cfg.Replicator.Timepoints()); err != nil {
					return err
				}
			}

			report := tournamentReport{Matrix: m, Trajectory: traj}
			if save {
				id, err := saveRun(cmd, cfg, logger, t, m, recorder.Cells(), traj)
				if err != nil {
					return err
				}
				report.ID = id
			}
			if checkpoint != "" {
				if err := evolution.SaveCheckpoint(checkpoint, evolution.NewCheckpoint(t, m, traj)); err != nil {
					return err
				}
				logger.Info("checkpoint saved", "path", checkpoint)
			}
			if out != "" {
				if err := os.WriteFile(out, wire.EncodeMatrix(m), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printMatrix(cmd.OutOrStdout(), m)
			if traj != nil {
				printRanking(cmd.OutOrStdout(), traj)
			}
			if report.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSaved as run %s\n", report.ID)
			}
			return nil
		},
	}
	addMatchFlags(cmd)
	addTournamentFlags(cmd)
	cmd.Flags().StringSlice("roster", nil, "Comma-separated strategy names (default: full roster)")
	cmd.Flags().Bool("evolve", false, "Run replicator dynamics on the matrix")
	cmd.Flags().Bool("save", false, "Store the run in the database")
	cmd.Flags().String("checkpoint", "", "Write a JSON checkpoint to this file")
	cmd.Flags().String("out", "", "Write the matrix as FlatBuffers to this file")
	return cmd
}

type tournamentReport struct {
	ID         string                       `json:"id,omitempty"`
	Matrix     *evolution.InteractionMatrix `json:"matrix"`
	Trajectory *evolution.Trajectory        `json:"trajectory,omitempty"`
}

// evolveMatrix runs the configured replicator over m.
func evolveMatrix(cfg *config.Config, m *evolution.InteractionMatrix) (*evolution.Trajectory, error) {
	shares, err := evolution.SharesByName(m, cfg.Replicator.Shares)
	if err != nil {
		return nil, err
	}
	return evolution.Evolve(m, shares, cfg.Replicator.Timepoints())
}

func saveRun(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, t *evolution.Tournament,
	m *evolution.InteractionMatrix, cells []store.Cell, traj *evolution.Trajectory) (string, error) {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	id, err := store.SaveTournament(cmd.Context(), db, t, m, cells, traj, engine.Version)
	if err != nil {
		return "", err
	}
	logger.Info("run saved", "id", id, "store", cfg.Store.Path)
	return id, nil
}

func printMatrix(w io.Writer, m *evolution.InteractionMatrix) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"", ""}
	for j := range m.Names {
		header = append(header, fmt.Sprintf("%d", j))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for i, row := range m.Values {
		cells := []string{fmt.Sprintf("%d", i), m.Names[i]}
		for _, v := range row {
			cells = append(cells, fmt.Sprintf("%.3f", v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d strategies, %d matches per pair\n", m.Size(), m.SampleSize)
}

func printRanking(w io.Writer, traj *evolution.Trajectory) {
	final := traj.Final()
	fmt.Fprintf(w, "\nPopulation at t=%g (diversity %.3f):\n", traj.Times[len(traj.Times)-1], final.Diversity())
	for i, s := range final.Ranked() {
		if s.Share < evolution.ExtinctionThreshold {
			break
		}
		fmt.Fprintf(w, "  %2d. %-45s %.4f\n", i+1, s.Name, s.Share)
	}
}

// progress rewrites a single status line as pairs complete.
type progress struct {
	w       io.Writer
	total   int
	current int
	start   time.Time
	enabled bool
}

func newProgress(w io.Writer, total int, enabled bool) *progress {
	return &progress{w: w, total: total, start: time.Now(), enabled: enabled}
}

func (p *progress) step() {
	p.current++
	if !p.enabled || p.total == 0 {
		return
	}
	fmt.Fprintf(p.w, "\rPairs %d/%d (%.0f%%) | %s",
		p.current, p.total, float64(p.current)/float64(p.total)*100, formatDuration(time.Since(p.start)))
}

func (p *progress) done() {
	if p.enabled && p.current > 0 {
		fmt.Fprintln(p.w)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
