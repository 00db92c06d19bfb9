package evolution

import (
	"fmt"
	"slices"

	"github.com/signalnine/ecoround/engine"
)

// ExtinctionThreshold is the share below which a strategy counts as gone.
const ExtinctionThreshold = 1e-4

// Share is one strategy's slice of the population.
type Share struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

// Population is a set of strategies with their population shares.
type Population struct {
	Names  []string  `json:"names"`
	Shares []float64 `json:"shares"`
}

// Size returns the number of strategies in the population.
func (p Population) Size() int {
	return len(p.Names)
}

// Best returns the strategy with the largest share.
func (p Population) Best() Share {
	if len(p.Names) == 0 {
		return Share{}
	}
	best := 0
	for i, s := range p.Shares[1:] {
		if s > p.Shares[best] {
			best = i + 1
		}
	}
	return Share{Name: p.Names[best], Share: p.Shares[best]}
}

// Ranked returns the shares sorted largest first. Ties keep roster order.
func (p Population) Ranked() []Share {
	out := make([]Share, len(p.Names))
	for i := range p.Names {
		out[i] = Share{Name: p.Names[i], Share: p.Shares[i]}
	}
	slices.SortStableFunc(out, func(a, b Share) int {
		switch {
		case a.Share > b.Share:
			return -1
		case a.Share < b.Share:
			return 1
		}
		return 0
	})
	return out
}

// Diversity is the Gini-Simpson index normalised to [0, 1]: 1 for a
// uniform population, 0 when a single strategy holds everything.
func (p Population) Diversity() float64 {
	n := len(p.Shares)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, s := range p.Shares {
		sumSq += s * s
	}
	return (1 - sumSq) / (1 - 1/float64(n))
}

// Survivors lists the strategies whose share is at least threshold.
func (p Population) Survivors(threshold float64) []string {
	var out []string
	for i, s := range p.Shares {
		if s >= threshold {
			out = append(out, p.Names[i])
		}
	}
	return out
}

// Trajectory is a replicator run: the population at every timepoint.
type Trajectory struct {
	Names  []string    `json:"names"`
	Times  []float64   `json:"times"`
	Shares [][]float64 `json:"shares"`
}

// At returns the population at timepoint k.
func (t *Trajectory) At(k int) Population {
	return Population{Names: t.Names, Shares: t.Shares[k]}
}

// Final returns the population at the last timepoint.
func (t *Trajectory) Final() Population {
	if len(t.Shares) == 0 {
		return Population{Names: t.Names}
	}
	return t.At(len(t.Shares) - 1)
}

// Series returns the share of strategy i over time.
func (t *Trajectory) Series(i int) []float64 {
	out := make([]float64, len(t.Shares))
	for k, row := range t.Shares {
		out[k] = row[i]
	}
	return out
}

// TimepointStats summarises a trajectory at one timepoint.
type TimepointStats struct {
	Time      float64 `json:"time"`
	Leader    string  `json:"leader"`
	LeadShare float64 `json:"lead_share"`
	Diversity float64 `json:"diversity"`
	Survivors int     `json:"survivors"`
}

// Stats summarises every timepoint of the trajectory.
func (t *Trajectory) Stats() []TimepointStats {
	out := make([]TimepointStats, len(t.Shares))
	for k := range t.Shares {
		p := t.At(k)
		best := p.Best()
		out[k] = TimepointStats{
			Time:      t.Times[k],
			Leader:    best.Name,
			LeadShare: best.Share,
			Diversity: p.Diversity(),
			Survivors: len(p.Survivors(ExtinctionThreshold)),
		}
	}
	return out
}

// Evolve runs replicator dynamics over the interaction matrix. Shares are
// in matrix order; nil starts uniform.
func Evolve(m *InteractionMatrix, shares []float64, timepoints []float64) (*Trajectory, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	rows, err := ReplicatorDynamics(m.Values, shares, timepoints)
	if err != nil {
		return nil, fmt.Errorf("replicator: %w", err)
	}
	return &Trajectory{
		Names:  append([]string(nil), m.Names...),
		Times:  append([]float64(nil), timepoints...),
		Shares: rows,
	}, nil
}

// SharesByName orders named shares to match the matrix. See ResolveShares.
func SharesByName(m *InteractionMatrix, named map[string]float64) ([]float64, error) {
	return ResolveShares(m.Names, named)
}

// ResolveShares orders named shares to match names and checks that they
// form a distribution. Strategies not named get zero share. An empty map
// yields nil, which Evolve treats as uniform. Call it on a roster's names
// before the tournament runs to reject bad shares early.
func ResolveShares(names []string, named map[string]float64) ([]float64, error) {
	if len(named) == 0 {
		return nil, nil
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	out := make([]float64, len(names))
	for name, s := range named {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: share for unknown strategy %q", engine.ErrConfiguration, name)
		}
		out[i] = s
	}
	if err := validateShares(out, len(names)); err != nil {
		return nil, err
	}
	return out, nil
}
