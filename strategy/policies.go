package strategy

import (
	"github.com/signalnine/ecoround/engine"
)

// stayAboveFloor is the resource level "stay above" policies eco to protect.
const stayAboveFloor = 4

// ShortTerm buys the strongest affordable option every round.
func ShortTerm() *Policy {
	return pure("short term", func(ctx engine.Context) []float64 {
		return best(ctx.Dim())
	})
}

// Champ ecos every round.
func Champ() *Policy {
	return pure("champ", func(ctx engine.Context) []float64 {
		return eco(ctx.Dim())
	})
}

// EcoTil4 saves until it can afford a full buy.
func EcoTil4() *Policy {
	return pure("eco til 4", func(ctx engine.Context) []float64 {
		if ctx.Own < 4 {
			return eco(ctx.Dim())
		}
		return best(ctx.Dim())
	})
}

// EcoTilN saves until its resources reach the strategy parameter n.
func EcoTilN() *Policy {
	return pure("eco til n eco", func(ctx engine.Context) []float64 {
		if ctx.Own < float64(ctx.Param) {
			return eco(ctx.Dim())
		}
		return best(ctx.Dim())
	})
}

// EcoFirstN saves for the first n rounds of a half, then plays short term.
func EcoFirstN() *Policy {
	return pure("eco first n rounds", func(ctx engine.Context) []float64 {
		if ctx.Round < ctx.Param {
			return eco(ctx.Dim())
		}
		return best(ctx.Dim())
	})
}

// EcoFirstNStayAbove saves through round n, then plays short term unless
// its resources have fallen below 4.
func EcoFirstNStayAbove() *Policy {
	return pure("eco first n and stay above 4 eco", func(ctx engine.Context) []float64 {
		if ctx.Round <= ctx.Param || ctx.Own < stayAboveFloor {
			return eco(ctx.Dim())
		}
		return best(ctx.Dim())
	})
}

// EcoFirstNThenLittle saves for n rounds, little-buys on round n, then plays
// short term.
func EcoFirstNThenLittle() *Policy {
	return pure("eco first n then 1 lilbuy then short term", func(ctx engine.Context) []float64 {
		switch {
		case ctx.Round < ctx.Param:
			return eco(ctx.Dim())
		case ctx.Round == ctx.Param:
			if ctx.Own < 2 {
				return eco(ctx.Dim())
			}
			return oneHot(ctx.Dim(), int(engine.LittleBuy))
		default:
			return best(ctx.Dim())
		}
	})
}

// EcoFirstNThenHalf saves for n rounds, half-buys on round n if it can,
// then plays short term.
func EcoFirstNThenHalf() *Policy {
	return pure("eco first n then 1 halfbuy then short term", func(ctx engine.Context) []float64 {
		switch {
		case ctx.Round < ctx.Param:
			return eco(ctx.Dim())
		case ctx.Round == ctx.Param:
			if ctx.Own < 3 {
				return eco(ctx.Dim())
			}
			return oneHot(ctx.Dim(), int(engine.HalfBuy))
		default:
			return best(ctx.Dim())
		}
	})
}

// EcoWhenDown saves whenever it has less money than its opponent.
func EcoWhenDown() *Policy {
	return pure("eco when down on money", func(ctx engine.Context) []float64 {
		if ctx.Own < ctx.Opponent {
			return eco(ctx.Dim())
		}
		return best(ctx.Dim())
	})
}

// BuyForNext saves until it can full-buy, except that at exactly 3.5 it
// little-buys since a loss still leaves enough for a full buy next round.
func BuyForNext() *Policy {
	return pure("buy for next", func(ctx engine.Context) []float64 {
		switch {
		case ctx.Own == 3.5:
			return oneHot(ctx.Dim(), int(engine.LittleBuy))
		case ctx.Own < 3.5:
			return eco(ctx.Dim())
		default:
			return best(ctx.Dim())
		}
	})
}

// NeverHalf plays short term but little-buys where short term would half-buy.
func NeverHalf() *Policy {
	return pure("never half", func(ctx engine.Context) []float64 {
		if ctx.Own < 3 || ctx.Own > 4 {
			return best(ctx.Dim())
		}
		return oneHot(ctx.Dim(), int(engine.LittleBuy))
	})
}

// Random picks uniformly among the affordable actions.
func Random() *Policy {
	return pure("random", func(ctx engine.Context) []float64 {
		return uniform(ctx.Dim())
	})
}
