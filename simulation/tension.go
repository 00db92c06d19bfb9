package simulation

import "github.com/signalnine/ecoround/engine"

// TensionMetrics describes how contested a single match was.
type TensionMetrics struct {
	LeadChanges       int     `json:"lead_changes"`        // times the points leader switched
	DecisiveRound     int     `json:"decisive_round"`      // round the winner took a permanent lead, 0 for a draw
	ClosestMargin     float32 `json:"closest_margin"`      // smallest normalised points gap (0 = tied)
	TotalRounds       int     `json:"total_rounds"`
	WinnerWasTrailing bool    `json:"winner_was_trailing"` // winner was behind at the midpoint
}

// DecisiveRoundPct is how far into the match the winner took a permanent
// lead, in [0, 1].
func (m TensionMetrics) DecisiveRoundPct() float64 {
	if m.TotalRounds == 0 {
		return 0
	}
	return float64(m.DecisiveRound) / float64(m.TotalRounds)
}

// tensionTracker follows the points leader round by round.
type tensionTracker struct {
	metrics       TensionMetrics
	currentLeader int   // last non-tied leader, -1 before anyone has led
	leaderHistory []int // leader after each round, -1 for a tie
}

func newTensionTracker(rounds int) *tensionTracker {
	return &tensionTracker{
		metrics:       TensionMetrics{ClosestMargin: 1},
		currentLeader: -1,
		leaderHistory: make([]int, 0, rounds),
	}
}

// update records the score after one round.
func (t *tensionTracker) update(points [2]int) {
	leader := pointsLeader(points)
	t.leaderHistory = append(t.leaderHistory, leader)
	t.metrics.TotalRounds++

	if leader != -1 {
		if t.currentLeader != -1 && leader != t.currentLeader {
			t.metrics.LeadChanges++
		}
		t.currentLeader = leader
	}
	if margin := pointsMargin(points); margin < t.metrics.ClosestMargin {
		t.metrics.ClosestMargin = margin
	}
}

// finish resolves the metrics that depend on the match winner.
func (t *tensionTracker) finish(winner int8) TensionMetrics {
	if winner < 0 || len(t.leaderHistory) == 0 {
		return t.metrics
	}
	w := int(winner)

	decisive := len(t.leaderHistory)
	for decisive > 0 && t.leaderHistory[decisive-1] == w {
		decisive--
	}
	t.metrics.DecisiveRound = decisive + 1

	mid := t.leaderHistory[len(t.leaderHistory)/2]
	t.metrics.WinnerWasTrailing = mid != -1 && mid != w
	return t.metrics
}

// MeasureTension computes the tension metrics of a played match.
func MeasureTension(h engine.History, winner int8) TensionMetrics {
	t := newTensionTracker(len(h))
	for _, s := range h {
		if s.Choice != nil {
			t.update(s.Points)
		}
	}
	return t.finish(winner)
}

func pointsLeader(points [2]int) int {
	switch {
	case points[0] > points[1]:
		return 0
	case points[1] > points[0]:
		return 1
	default:
		return -1
	}
}

func pointsMargin(points [2]int) float32 {
	first, second := max(points[0], points[1]), min(points[0], points[1])
	if first == 0 {
		return 0
	}
	return float32(first-second) / float32(first)
}
