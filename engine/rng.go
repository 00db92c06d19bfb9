package engine

import "math/rand"

// Source yields uniform draws in [0, 1). A round consumes three draws:
// A's action, B's action, then the resolution roll.
type Source interface {
	Float64() float64
}

// DrawsPerRound is the number of uniform draws a round consumes.
const DrawsPerRound = 3

// NewSource returns a seeded source. A zero seed is mapped to 1 so that
// callers passing an unset seed still get a reproducible stream.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// ReplaySource returns a fixed sequence of draws, cycling when exhausted.
// It is used to pin round outcomes in tests and replays.
type ReplaySource struct {
	draws  []float64
	cursor int
}

// NewReplaySource creates a source that replays draws in order.
func NewReplaySource(draws ...float64) *ReplaySource {
	if len(draws) == 0 {
		draws = []float64{0}
	}
	return &ReplaySource{draws: draws}
}

// Float64 returns the next recorded draw.
func (r *ReplaySource) Float64() float64 {
	v := r.draws[r.cursor%len(r.draws)]
	r.cursor++
	return v
}

// Consumed reports how many draws have been taken.
func (r *ReplaySource) Consumed() int {
	return r.cursor
}
