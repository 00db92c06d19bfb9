// Package strategy holds the buy policies that can be entered into a match.
//
// Every policy is a pure function of the round context. A policy's name is
// fixed when it is constructed and never changes as a side effect of play.
package strategy

import (
	"github.com/signalnine/ecoround/engine"
)

// DecideFunc computes a distribution over the deciding player's actions.
type DecideFunc func(ctx engine.Context) ([]float64, error)

// Policy bundles a display name with a decision function.
type Policy struct {
	name   string
	decide DecideFunc
}

// New creates a policy from a name and a decision function.
func New(name string, decide DecideFunc) *Policy {
	return &Policy{name: name, decide: decide}
}

// pure wraps a decision function that cannot fail.
func pure(name string, decide func(ctx engine.Context) []float64) *Policy {
	return New(name, func(ctx engine.Context) ([]float64, error) {
		return decide(ctx), nil
	})
}

// Name returns the policy's display name.
func (p *Policy) Name() string {
	return p.name
}

// Decide returns the policy's distribution for ctx.
func (p *Policy) Decide(ctx engine.Context) ([]float64, error) {
	return p.decide(ctx)
}

// oneHot puts all weight on idx, clamped into [0, dim).
func oneHot(dim, idx int) []float64 {
	dist := make([]float64, dim)
	if dim == 0 {
		return dist
	}
	if idx >= dim {
		idx = dim - 1
	}
	if idx < 0 {
		idx = 0
	}
	dist[idx] = 1
	return dist
}

// eco saves: always the cheapest action.
func eco(dim int) []float64 {
	return oneHot(dim, 0)
}

// best spends: always the most expensive affordable action.
func best(dim int) []float64 {
	return oneHot(dim, dim-1)
}

// uniform spreads weight evenly across the menu.
func uniform(dim int) []float64 {
	dist := make([]float64, dim)
	for i := range dist {
		dist[i] = 1 / float64(dim)
	}
	return dist
}
