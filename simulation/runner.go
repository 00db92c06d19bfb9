package simulation

import (
	"fmt"
	"time"

	"github.com/signalnine/ecoround/engine"
)

// Mode selects how a match ends.
type Mode string

const (
	// FirstTo plays until either player reaches PlayTo points.
	FirstTo Mode = "first-to"
	// FixedRounds plays exactly PlayTo rounds.
	FixedRounds Mode = "fixed"
	// Halves plays a 12-round half and a 13-round half with a money reset,
	// stopping the record at the first player to 13 points.
	Halves Mode = "halves"
)

// Two-half match format.
const (
	FirstHalfRounds  = 12
	SecondHalfRounds = 13
	HalvesWinTarget  = 13
)

// DefaultMaxRounds caps the rounds a single match may play.
const DefaultMaxRounds = 10000

// MatchConfig holds the parameters of a single match.
type MatchConfig struct {
	Mode           Mode       `json:"mode" yaml:"mode"`
	PlayTo         int        `json:"play_to" yaml:"play_to"`                 // points target or round count
	StartingPoints [2]int     `json:"starting_points" yaml:"starting_points"` // ignored in Halves mode
	StartingMoney  [2]float64 `json:"starting_money" yaml:"starting_money"`
	MaxMoney       float64    `json:"max_money" yaml:"max_money"`
	LossBonuses    bool       `json:"loss_bonuses" yaml:"loss_bonuses"`
	StartLossBonus int        `json:"start_loss_bonus" yaml:"start_loss_bonus"`
	Param          int        `json:"n" yaml:"n"` // strategy parameter passed to every decision
	MaxRounds      int        `json:"max_rounds" yaml:"max_rounds"`
}

// DefaultMatchConfig returns a first-to-13 match starting on 1 money each.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Mode:          FirstTo,
		PlayTo:        13,
		StartingMoney: [2]float64{1, 1},
		MaxMoney:      15,
		LossBonuses:   true,
		Param:         5,
		MaxRounds:     DefaultMaxRounds,
	}
}

// Validate rejects configurations that cannot produce a match.
func (c MatchConfig) Validate() error {
	switch c.Mode {
	case FirstTo, FixedRounds:
		if c.PlayTo <= 0 {
			return fmt.Errorf("%w: play_to must be positive, got %d", engine.ErrConfiguration, c.PlayTo)
		}
	case Halves:
	default:
		return fmt.Errorf("%w: unknown mode %q", engine.ErrConfiguration, c.Mode)
	}
	if c.MaxMoney <= 0 {
		return fmt.Errorf("%w: max_money must be positive, got %v", engine.ErrConfiguration, c.MaxMoney)
	}
	for i, m := range c.StartingMoney {
		if m < 1 {
			return fmt.Errorf("%w: starting money for player %d must be at least 1, got %v", engine.ErrConfiguration, i, m)
		}
	}
	for i, p := range c.StartingPoints {
		if p < 0 {
			return fmt.Errorf("%w: starting points for player %d must be non-negative, got %d", engine.ErrConfiguration, i, p)
		}
	}
	if c.StartLossBonus < 0 || c.StartLossBonus > engine.MaxLossBonus {
		return fmt.Errorf("%w: start_loss_bonus must be in [0, %d], got %d", engine.ErrConfiguration, engine.MaxLossBonus, c.StartLossBonus)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max_rounds must be non-negative, got %d", engine.ErrConfiguration, c.MaxRounds)
	}
	return nil
}

func (c MatchConfig) roundLimit() int {
	if c.MaxRounds <= 0 {
		return DefaultMaxRounds
	}
	return c.MaxRounds
}

func (c MatchConfig) roundConfig() engine.RoundConfig {
	return engine.RoundConfig{LossBonuses: c.LossBonuses, Cap: c.MaxMoney, Param: c.Param}
}

// initialState builds the state at the start of a half.
func (c MatchConfig) initialState(points [2]int) *engine.MatchState {
	state := &engine.MatchState{
		Points:    points,
		Resources: c.StartingMoney,
	}
	if c.LossBonuses {
		state.LossBonus = [2]int{c.StartLossBonus, c.StartLossBonus}
	}
	return state
}

// MatchResult holds the outcome of a single match.
type MatchResult struct {
	Players    [2]string      `json:"players"`
	History    engine.History `json:"history"`
	Points     [2]int         `json:"points"`
	WinnerID   int8           `json:"winner"` // 0/1 = player, -1 = draw
	Rounds     int            `json:"rounds"`
	Tension    TensionMetrics `json:"tension"`
	DurationNs uint64         `json:"duration_ns"`
}

// phase describes one uninterrupted run of rounds.
type phase struct {
	half      int
	rounds    int // 0 = no fixed length
	target    int // 0 = no points target
	firstHalf bool
	flagEnd   bool // tell strategies about the half's last round
}

// PlayMatch plays one complete match between a (player A) and b (player B).
func PlayMatch(a, b engine.Strategy, cfg MatchConfig, rng engine.Source) (MatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return MatchResult{}, err
	}
	start := time.Now()
	players := [2]engine.Strategy{a, b}

	var history engine.History
	var err error
	switch cfg.Mode {
	case FirstTo:
		state := cfg.initialState(cfg.StartingPoints)
		history, err = runPhase(players, state, phase{target: cfg.PlayTo}, cfg, rng)
	case FixedRounds:
		state := cfg.initialState(cfg.StartingPoints)
		history, err = runPhase(players, state, phase{rounds: cfg.PlayTo}, cfg, rng)
	case Halves:
		history, err = playHalves(players, cfg, rng)
	}
	if err != nil {
		return MatchResult{}, fmt.Errorf("%s vs %s: %w", a.Name(), b.Name(), err)
	}

	final := history.Final()
	result := MatchResult{
		Players:    [2]string{a.Name(), b.Name()},
		History:    history,
		Points:     final.Points,
		WinnerID:   -1,
		Rounds:     history.Rounds(),
		DurationNs: uint64(time.Since(start).Nanoseconds()),
	}
	switch {
	case final.Points[0] > final.Points[1]:
		result.WinnerID = 0
	case final.Points[1] > final.Points[0]:
		result.WinnerID = 1
	}
	result.Tension = MeasureTension(history, result.WinnerID)
	return result, nil
}

// playHalves runs both halves, carries points across the money reset, and
// cuts the merged record at the first player to the win target.
func playHalves(players [2]engine.Strategy, cfg MatchConfig, rng engine.Source) (engine.History, error) {
	state := cfg.initialState([2]int{})
	first, err := runPhase(players, state, phase{
		half:      1,
		rounds:    FirstHalfRounds,
		firstHalf: true,
		flagEnd:   true,
	}, cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("first half: %w", err)
	}

	state = cfg.initialState(state.Points)
	second, err := runPhase(players, state, phase{
		half:    2,
		rounds:  SecondHalfRounds,
		flagEnd: true,
	}, cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("second half: %w", err)
	}

	return TruncateAt(append(first, second...), HalvesWinTarget), nil
}

// TruncateAt cuts a history immediately after the first snapshot in which
// either player holds at least target points.
func TruncateAt(h engine.History, target int) engine.History {
	for i, s := range h {
		if max(s.Points[0], s.Points[1]) >= target {
			return h[:i+1]
		}
	}
	return h
}

// runPhase plays rounds until the phase's length or points target is met.
// The returned history starts with the phase's opening snapshot.
func runPhase(players [2]engine.Strategy, state *engine.MatchState, p phase, cfg MatchConfig, rng engine.Source) (engine.History, error) {
	history := engine.History{state.Snapshot()}
	rc := cfg.roundConfig()
	limit := cfg.roundLimit()

	for round := 0; ; round++ {
		if p.rounds > 0 && round >= p.rounds {
			break
		}
		if p.target > 0 && max(state.Points[0], state.Points[1]) >= p.target {
			break
		}
		if round >= limit {
			return nil, fmt.Errorf("%w: %d rounds", engine.ErrRoundBudget, round)
		}

		info := engine.RoundInfo{
			Half:       p.half,
			Number:     round,
			FirstHalf:  p.firstHalf,
			HalfEnding: p.flagEnd && round == p.rounds-1,
		}
		snap, err := engine.Resolve(state, players, info, rc, rng)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		history = append(history, snap)
	}
	return history, nil
}
