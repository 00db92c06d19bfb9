package simulation

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/ecoround/engine"
)

// AggregatedStats summarises a batch of matches between one pair.
type AggregatedStats struct {
	TotalMatches  uint32  `json:"total_matches"`
	Player0Wins   uint32  `json:"player0_wins"`
	Player1Wins   uint32  `json:"player1_wins"`
	Draws         uint32  `json:"draws"`
	AvgRounds     float32 `json:"avg_rounds"`
	MedianRounds  uint32  `json:"median_rounds"`
	AvgDurationNs uint64  `json:"avg_duration_ns"`

	// Tension
	AvgLeadChanges  float32 `json:"avg_lead_changes"`
	AvgDecisivePct  float32 `json:"avg_decisive_pct"`
	TrailingWinners uint32  `json:"trailing_winners"` // decisive matches won from behind at the midpoint
}

// ComebackRate is the fraction of decisive matches won by the player who
// trailed at the midpoint.
func (s AggregatedStats) ComebackRate() float64 {
	decisive := s.Player0Wins + s.Player1Wins
	if decisive == 0 {
		return 0
	}
	return float64(s.TrailingWinners) / float64(decisive)
}

// WinRate is the fraction of matches won by player A.
func (s AggregatedStats) WinRate() float64 {
	if s.TotalMatches == 0 {
		return 0
	}
	return float64(s.Player0Wins) / float64(s.TotalMatches)
}

// BatchOptions controls a batch run.
type BatchOptions struct {
	Seed    int64
	Workers int // <= 0 uses runtime.NumCPU()
	// KeepHistory retains every match's history in the returned results.
	KeepHistory bool
}

// MatchSeeds derives one seed per match from a master seed. Seeds depend
// only on the master seed and the match index, never on scheduling.
func MatchSeeds(seed int64, count int) []int64 {
	rng := engine.NewSource(seed)
	seeds := make([]int64, count)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return seeds
}

// RunBatch plays count matches serially.
func RunBatch(a, b engine.Strategy, count int, cfg MatchConfig, opts BatchOptions) ([]MatchResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: match count must be positive, got %d", engine.ErrConfiguration, count)
	}
	results := make([]MatchResult, count)
	for i, seed := range MatchSeeds(opts.Seed, count) {
		r, err := PlayMatch(a, b, cfg, engine.NewSource(seed))
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", i, err)
		}
		if !opts.KeepHistory {
			r.History = nil
		}
		results[i] = r
	}
	return results, nil
}

// RunBatchParallel plays count matches on a bounded worker pool. Results
// are index-ordered and identical to RunBatch for the same seed. The first
// failing match cancels the rest and its error is returned.
func RunBatchParallel(ctx context.Context, a, b engine.Strategy, count int, cfg MatchConfig, opts BatchOptions) ([]MatchResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: match count must be positive, got %d", engine.ErrConfiguration, count)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]MatchResult, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, seed := range MatchSeeds(opts.Seed, count) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := PlayMatch(a, b, cfg, engine.NewSource(seed))
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			if !opts.KeepHistory {
				r.History = nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// PlayMatches runs count matches between a and b in parallel and tallies
// the outcomes.
func PlayMatches(ctx context.Context, a, b engine.Strategy, count int, cfg MatchConfig, opts BatchOptions) (AggregatedStats, error) {
	results, err := RunBatchParallel(ctx, a, b, count, cfg, opts)
	if err != nil {
		return AggregatedStats{}, err
	}
	return Aggregate(results), nil
}

// Aggregate tallies a set of match results.
func Aggregate(results []MatchResult) AggregatedStats {
	stats := AggregatedStats{
		TotalMatches: uint32(len(results)),
	}

	rounds := make([]uint32, 0, len(results))
	totalDuration := uint64(0)
	leadChanges, decisivePct := 0, 0.0

	for _, result := range results {
		switch result.WinnerID {
		case 0:
			stats.Player0Wins++
		case 1:
			stats.Player1Wins++
		default:
			stats.Draws++
		}
		rounds = append(rounds, uint32(result.Rounds))
		totalDuration += result.DurationNs

		leadChanges += result.Tension.LeadChanges
		decisivePct += result.Tension.DecisiveRoundPct()
		if result.Tension.WinnerWasTrailing {
			stats.TrailingWinners++
		}
	}

	if len(rounds) > 0 {
		sum := uint64(0)
		for _, r := range rounds {
			sum += uint64(r)
		}
		stats.AvgRounds = float32(sum) / float32(len(rounds))
		stats.MedianRounds = median(rounds)
		stats.AvgDurationNs = totalDuration / uint64(len(rounds))
		stats.AvgLeadChanges = float32(leadChanges) / float32(len(rounds))
		stats.AvgDecisivePct = float32(decisivePct / float64(len(rounds)))
	}
	return stats
}

func median(values []uint32) uint32 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}
