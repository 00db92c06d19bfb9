package strategy

import (
	"fmt"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/nash"
)

// SupportEnumerated treats the round's menu as a zero-sum game and plays
// its own marginal of the first equilibrium support enumeration yields.
func SupportEnumerated() *Policy {
	return New("support enumerated", func(ctx engine.Context) ([]float64, error) {
		game := nash.ZeroSum(ctx.Menu.Matrix())
		eq, ok := game.First()
		if !ok {
			return nil, fmt.Errorf("%w: no equilibrium for %dx%d menu",
				engine.ErrInvalidDistribution, ctx.Menu.Rows(), ctx.Menu.Cols())
		}
		if ctx.Slot == engine.PlayerA {
			return eq.Row, nil
		}
		return eq.Col, nil
	})
}
