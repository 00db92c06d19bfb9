// Package evolution runs strategy rosters against each other and evolves
// population shares of the roster with replicator dynamics.
package evolution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/logging"
	"github.com/signalnine/ecoround/simulation"
)

// TournamentConfig holds configuration for a round-robin tournament.
type TournamentConfig struct {
	SampleSize    int      `json:"sample_size" yaml:"sample_size"`       // matches per pair
	DecimalPlaces int      `json:"decimal_places" yaml:"decimal_places"` // rounding of matrix entries
	Workers       int      `json:"workers" yaml:"workers"`               // 0 = auto
	Seed          int64    `json:"seed" yaml:"seed"`
	Roster        []string `json:"roster,omitempty" yaml:"roster"` // empty = full first-phase roster
}

// DefaultTournamentConfig returns the default tournament configuration.
func DefaultTournamentConfig() TournamentConfig {
	return TournamentConfig{
		SampleSize:    1000,
		DecimalPlaces: 3,
		Workers:       0,
		Seed:          1,
	}
}

// Validate rejects configurations that cannot produce a matrix.
func (c TournamentConfig) Validate() error {
	if c.SampleSize <= 0 {
		return fmt.Errorf("%w: sample_size must be positive, got %d", engine.ErrConfiguration, c.SampleSize)
	}
	if c.DecimalPlaces < 0 {
		return fmt.Errorf("%w: decimal_places must be non-negative, got %d", engine.ErrConfiguration, c.DecimalPlaces)
	}
	return nil
}

// PairResult is the outcome of one pairing, row strategy as player A.
// Value is the row's score and Reverse the column's, both taken from the
// same matches.
type PairResult struct {
	Row     int
	Col     int
	Stats   simulation.AggregatedStats
	Value   float64
	Reverse float64
}

// Tournament plays every pair of a roster and builds the interaction
// matrix.
type Tournament struct {
	Config TournamentConfig
	Match  simulation.MatchConfig
	Logger *slog.Logger

	// OnPairComplete is called once per finished pair. Calls are serialised.
	OnPairComplete func(PairResult)
}

// NewTournament creates a tournament. A nil logger discards output.
func NewTournament(cfg TournamentConfig, match simulation.MatchConfig, logger *slog.Logger) *Tournament {
	return &Tournament{
		Config: cfg,
		Match:  match,
		Logger: logging.OrDiscard(logger),
	}
}

// InteractionMatrix plays SampleSize matches for every pair (i, j), i < j,
// with i as player A. The same sample fills both cells: (i, j) holds i's
// score and (j, i) holds j's. A draw scores half a win. The diagonal is fixed at 0.5. The first failing match
// aborts the whole tournament.
func (t *Tournament) InteractionMatrix(ctx context.Context, roster []engine.Strategy) (*InteractionMatrix, error) {
	if err := t.Config.Validate(); err != nil {
		return nil, err
	}
	if err := t.Match.Validate(); err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: empty roster", engine.ErrConfiguration)
	}

	start := time.Now()
	m := NewInteractionMatrix(RosterNames(roster), t.Config.SampleSize)
	t.Logger.Info("tournament started",
		"strategies", len(roster),
		"sample_size", t.Config.SampleSize,
		"mode", t.Match.Mode,
		"play_to", t.Match.PlayTo)

	err := t.evaluatePairs(ctx, roster, func(r PairResult) {
		m.Values[r.Row][r.Col] = r.Value
		m.Values[r.Col][r.Row] = r.Reverse
		t.Logger.Debug("pair complete",
			"a", roster[r.Row].Name(),
			"b", roster[r.Col].Name(),
			"score", r.Value,
			"avg_rounds", r.Stats.AvgRounds,
			"lead_changes", r.Stats.AvgLeadChanges)
		if t.OnPairComplete != nil {
			t.OnPairComplete(r)
		}
	})
	if err != nil {
		t.Logger.Warn("tournament aborted", "error", err)
		return nil, err
	}

	t.Logger.Info("tournament complete",
		"pairs", len(roster)*(len(roster)-1)/2,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return m, nil
}

// score converts one side's tallies into a matrix entry.
func (t *Tournament) score(wins, draws, total uint32) float64 {
	if total == 0 {
		return 0
	}
	points := decimal.NewFromInt(int64(wins)).
		Add(decimal.NewFromInt(int64(draws)).Div(decimal.NewFromInt(2)))
	return RoundTo(points.Div(decimal.NewFromInt(int64(total))), t.Config.DecimalPlaces)
}

// RoundTo rounds d half away from zero to places decimal places.
func RoundTo(d decimal.Decimal, places int) float64 {
	return d.Round(int32(places)).InexactFloat64()
}

// RosterNames lists the names of roster in order.
func RosterNames(roster []engine.Strategy) []string {
	out := make([]string, len(roster))
	for i, s := range roster {
		out[i] = s.Name()
	}
	return out
}
