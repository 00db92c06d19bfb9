package evolution

import (
	"context"
	"fmt"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/simulation"
)

// SweepPoint is the result of one parameter value in a sweep.
type SweepPoint struct {
	N               int     `json:"n"`
	SubjectWinRate  float64 `json:"subject_win_rate"`
	OpponentWinRate float64 `json:"opponent_win_rate"`
}

// SweepRange returns 0..playTo-1.
func SweepRange(playTo int) []int {
	out := make([]int, max(playTo, 0))
	for i := range out {
		out[i] = i
	}
	return out
}

// Sweep plays subject (as A) against opponent SampleSize times for every
// strategy parameter in params and reports both sides' win rates.
func (t *Tournament) Sweep(ctx context.Context, subject, opponent engine.Strategy, params []int) ([]SweepPoint, error) {
	if err := t.Config.Validate(); err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no parameter values to sweep", engine.ErrConfiguration)
	}

	seeds := simulation.MatchSeeds(t.Config.Seed, len(params))
	out := make([]SweepPoint, 0, len(params))
	for i, n := range params {
		cfg := t.Match
		cfg.Param = n
		stats, err := simulation.PlayMatches(ctx, subject, opponent, t.Config.SampleSize, cfg,
			simulation.BatchOptions{Seed: seeds[i], Workers: t.Config.Workers})
		if err != nil {
			return nil, fmt.Errorf("n=%d: %w", n, err)
		}
		total := float64(stats.TotalMatches)
		point := SweepPoint{
			N:               n,
			SubjectWinRate:  float64(stats.Player0Wins) / total,
			OpponentWinRate: float64(stats.Player1Wins) / total,
		}
		t.Logger.Debug("sweep point",
			"subject", subject.Name(),
			"opponent", opponent.Name(),
			"n", n,
			"win_rate", point.SubjectWinRate)
		out = append(out, point)
	}
	return out, nil
}
