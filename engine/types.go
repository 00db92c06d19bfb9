package engine

import "math"

// Slot identifies a player seat. PlayerA reads the menu by rows, PlayerB by columns.
type Slot uint8

const (
	PlayerA Slot = 0
	PlayerB Slot = 1
)

// Other returns the opposing seat.
func (s Slot) Other() Slot {
	return 1 - s
}

// Action indexes a buy tier, cheapest first.
type Action int

const (
	Eco Action = iota
	LittleBuy
	HalfBuy
	FullBuy
)

// MaxActions is the size of the base payoff table.
const MaxActions = 4

// MaxLossBonus is the ceiling of the loss-streak counter.
const MaxLossBonus = 4

// LossBonusStep is the extra loss payout per unit of loss-streak bonus.
const LossBonusStep = 0.5

func (a Action) String() string {
	switch a {
	case Eco:
		return "eco"
	case LittleBuy:
		return "little buy"
	case HalfBuy:
		return "half buy"
	case FullBuy:
		return "full buy"
	default:
		return "unknown"
	}
}

// baseTable[i][j] is the probability that player A wins the round when A
// plays tier i and B plays tier j.
var baseTable = [MaxActions][MaxActions]float64{
	{0.50, 0.35, 0.20, 0.05},
	{0.65, 0.50, 0.40, 0.15},
	{0.80, 0.60, 0.50, 0.25},
	{0.95, 0.85, 0.75, 0.50},
}

var winRewards = [MaxActions]float64{2, 1.5, 1, 1}

var lossRewards = [MaxActions]float64{1.5, 0.5, -0.5, -2}

// BaseTable returns a copy of the full payoff table.
func BaseTable() [MaxActions][MaxActions]float64 {
	return baseTable
}

// WinProbability returns the chance that A's tier a beats B's tier b.
func WinProbability(a, b int) float64 {
	return baseTable[a][b]
}

// WinReward is the money gained for winning a round with the given tier.
func WinReward(a int) float64 {
	return winRewards[a]
}

// LossReward is the money gained (or lost) for losing a round with the
// given tier while holding lossBonus units of loss-streak bonus.
func LossReward(a int, lossBonus int) float64 {
	return lossRewards[a] + LossBonusStep*float64(lossBonus)
}

// Tier floors a resource level to the number of affordable actions.
func Tier(resource float64) int {
	f := math.Floor(resource)
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f >= MaxActions {
		return MaxActions
	}
	return int(f)
}

// MatchState is the mutable per-match state. It is owned by a single match
// run and mutated once per round.
type MatchState struct {
	Points    [2]int
	Resources [2]float64
	LossBonus [2]int
}

// Snapshot captures the state after a round (or at the start of a half).
type Snapshot struct {
	Points    [2]int     `json:"points"`
	Resources [2]float64 `json:"resources"`
	LossBonus [2]int     `json:"loss_bonus"`
	Choice    *Choice    `json:"choice,omitempty"`
}

// Choice records what happened in the round that produced a snapshot.
type Choice struct {
	Half    int     `json:"half"`
	Round   int     `json:"round"`
	Actions [2]int  `json:"actions"`
	Roll    float64 `json:"roll"`
	Winner  Slot    `json:"winner"`
}

// Snapshot returns the current state as a history entry.
func (s *MatchState) Snapshot() Snapshot {
	return Snapshot{
		Points:    s.Points,
		Resources: s.Resources,
		LossBonus: s.LossBonus,
	}
}

// History is the ordered record of a match: one opening snapshot per half
// followed by one snapshot per round played.
type History []Snapshot

// Final returns the last snapshot, or the zero snapshot for an empty history.
func (h History) Final() Snapshot {
	if len(h) == 0 {
		return Snapshot{}
	}
	return h[len(h)-1]
}

// Rounds counts snapshots that were produced by a played round.
func (h History) Rounds() int {
	n := 0
	for _, s := range h {
		if s.Choice != nil {
			n++
		}
	}
	return n
}

// Choices returns the sequence of actions taken by one player.
func (h History) Choices(slot Slot) []int {
	out := make([]int, 0, len(h))
	for _, s := range h {
		if s.Choice != nil {
			out = append(out, s.Choice.Actions[slot])
		}
	}
	return out
}

// PointSeries returns the per-snapshot points of one player.
func (h History) PointSeries(slot Slot) []int {
	out := make([]int, len(h))
	for i, s := range h {
		out[i] = s.Points[slot]
	}
	return out
}

// ResourceSeries returns the per-snapshot resources of one player.
func (h History) ResourceSeries(slot Slot) []float64 {
	out := make([]float64, len(h))
	for i, s := range h {
		out[i] = s.Resources[slot]
	}
	return out
}

// Clone returns a deep copy of the history.
func (h History) Clone() History {
	out := make(History, len(h))
	for i, s := range h {
		out[i] = s
		if s.Choice != nil {
			c := *s.Choice
			out[i].Choice = &c
		}
	}
	return out
}
