package strategy

import (
	"fmt"
	"math"

	"github.com/signalnine/ecoround/engine"
)

// BuyForNextTwo looks two rounds ahead. For every action pair it builds the
// next round's menu on the win and loss branches, scales each by this
// round's win probability, and scores an action by its best win-branch row
// average plus its best loss-branch row average. The lowest tier among the
// top scorers is played.
func BuyForNextTwo() *Policy {
	return New("buy for next 2 rounds", func(ctx engine.Context) ([]float64, error) {
		idx, ok := LookaheadChoice(ctx.Own, ctx.Opponent, ctx.OwnLossBonus, ctx.OpponentLossBonus)
		if !ok {
			return nil, fmt.Errorf("%w: lookahead found no scorable action at %.2f vs %.2f",
				engine.ErrInvalidDistribution, ctx.Own, ctx.Opponent)
		}
		return oneHot(ctx.Dim(), idx), nil
	})
}

// LookaheadChoice returns the action the two-round lookahead would play,
// seen from the player holding own resources. The menu is built with that
// player as rows; the base table is constant-sum so this holds for either
// seat.
func LookaheadChoice(own, opp float64, ownBonus, oppBonus int) (int, bool) {
	start := engine.NewMenu(own, opp)
	bestIdx := -1
	bestScore := math.Inf(-1)

	for i := 0; i < start.Rows(); i++ {
		winBest := math.Inf(-1)
		lossBest := math.Inf(-1)
		for j := 0; j < start.Cols(); j++ {
			p := start.At(i, j)

			win := engine.NewMenu(own+engine.WinReward(i), opp+engine.LossReward(j, oppBonus))
			winBest = math.Max(winBest, bestRowAverage(win, p, p))

			loss := engine.NewMenu(own+engine.LossReward(i, ownBonus), opp+engine.WinReward(j))
			lossBest = math.Max(lossBest, bestRowAverage(loss, 1-p, p))
		}
		if math.IsInf(winBest, -1) || math.IsInf(lossBest, -1) {
			continue
		}
		if score := winBest + lossBest; score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx, bestIdx >= 0
}

// bestRowAverage returns the largest row mean of m after each entry e is
// mapped to e*scale + shift. Empty menus score -Inf.
func bestRowAverage(m engine.Menu, scale, shift float64) float64 {
	out := math.Inf(-1)
	if m.Cols() == 0 {
		return out
	}
	for r := 0; r < m.Rows(); r++ {
		sum := 0.0
		for c := 0; c < m.Cols(); c++ {
			sum += m.At(r, c)*scale + shift
		}
		out = math.Max(out, sum/float64(m.Cols()))
	}
	return out
}
