package engine

import (
	"fmt"
	"math"
)

// DistributionTolerance bounds floating-point slack when checking that a
// distribution sums to at most 1.
const DistributionTolerance = 1e-9

// Context is everything a strategy sees when choosing an action.
type Context struct {
	Round             int     // round index within the current half, from 0
	Own               float64 // own resources
	Opponent          float64 // opponent resources
	Menu              Menu
	Slot              Slot
	Param             int // strategy parameter n
	OwnLossBonus      int
	OpponentLossBonus int
	FirstHalf         bool // true while playing the first half of a two-half match
	HalfEnding        bool // true on the last round of a half
}

// Dim is the number of actions open to the deciding player.
func (c Context) Dim() int {
	return c.Menu.Dim(c.Slot)
}

// Strategy maps a round context to a probability distribution over the
// deciding player's menu actions. Implementations must be pure.
type Strategy interface {
	Name() string
	Decide(ctx Context) ([]float64, error)
}

// RoundConfig holds the per-match parameters the resolver needs.
type RoundConfig struct {
	LossBonuses bool
	Cap         float64
	Param       int
}

// RoundInfo locates a round inside a match.
type RoundInfo struct {
	Half       int
	Number     int
	FirstHalf  bool
	HalfEnding bool
}

// ValidateDistribution checks a strategy's output against the number of
// actions the player can afford.
func ValidateDistribution(dist []float64, dim int) error {
	if len(dist) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidDistribution)
	}
	if len(dist) != dim {
		return fmt.Errorf("%w: %d weights for %d actions", ErrInvalidDistribution, len(dist), dim)
	}
	sum := 0.0
	for i, p := range dist {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidDistribution, i, p)
		}
		sum += p
	}
	if sum <= 0 || sum > 1+DistributionTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidDistribution, sum)
	}
	return nil
}

// Sample walks the cumulative distribution and returns the first index
// whose running sum exceeds draw. If the weights sum to less than the draw
// the last index with positive weight is returned.
func Sample(dist []float64, draw float64) int {
	cum := 0.0
	last := 0
	for i, p := range dist {
		cum += p
		if p > 0 {
			last = i
		}
		if draw < cum {
			return i
		}
	}
	return last
}

// Resolve plays one round: both strategies decide, actions and the
// resolution roll are drawn from rng, and state is updated in place. The
// returned snapshot reflects the state after the round.
func Resolve(state *MatchState, players [2]Strategy, info RoundInfo, cfg RoundConfig, rng Source) (Snapshot, error) {
	menu := NewMenu(state.Resources[PlayerA], state.Resources[PlayerB])
	if menu.Degenerate() {
		return Snapshot{}, fmt.Errorf("%w: resources %.2f vs %.2f", ErrDegenerateMenu,
			state.Resources[PlayerA], state.Resources[PlayerB])
	}

	var dists [2][]float64
	for _, slot := range []Slot{PlayerA, PlayerB} {
		other := slot.Other()
		ctx := Context{
			Round:             info.Number,
			Own:               state.Resources[slot],
			Opponent:          state.Resources[other],
			Menu:              menu,
			Slot:              slot,
			Param:             cfg.Param,
			OwnLossBonus:      state.LossBonus[slot],
			OpponentLossBonus: state.LossBonus[other],
			FirstHalf:         info.FirstHalf,
			HalfEnding:        info.HalfEnding,
		}
		dist, err := players[slot].Decide(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s (player %d): %w", players[slot].Name(), slot, err)
		}
		if err := ValidateDistribution(dist, menu.Dim(slot)); err != nil {
			return Snapshot{}, fmt.Errorf("%s (player %d): %w", players[slot].Name(), slot, err)
		}
		dists[slot] = dist
	}

	var actions [2]int
	actions[PlayerA] = Sample(dists[PlayerA], rng.Float64())
	actions[PlayerB] = Sample(dists[PlayerB], rng.Float64())
	roll := rng.Float64()

	winner := PlayerB
	if menu.At(actions[PlayerA], actions[PlayerB]) > roll {
		winner = PlayerA
	}
	loser := winner.Other()

	state.Points[winner]++
	state.Resources[winner] += WinReward(actions[winner])
	state.Resources[loser] += LossReward(actions[loser], state.LossBonus[loser])

	if cfg.LossBonuses {
		if state.LossBonus[loser] < MaxLossBonus {
			state.LossBonus[loser]++
		}
		if state.LossBonus[winner] > 0 {
			state.LossBonus[winner]--
		}
	}

	for _, slot := range []Slot{PlayerA, PlayerB} {
		state.Resources[slot] = math.Min(state.Resources[slot], cfg.Cap)
	}

	snap := state.Snapshot()
	snap.Choice = &Choice{
		Half:    info.Half,
		Round:   info.Number,
		Actions: actions,
		Roll:    roll,
		Winner:  winner,
	}
	return snap, nil
}
