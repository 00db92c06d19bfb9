package strategy

import (
	"github.com/signalnine/ecoround/engine"
)

// halftimeSuffix marks the halftime-aware counterpart of a policy.
const halftimeSuffix = " pt.2"

// Halftime wraps a strategy so that on the last round of each half it
// plays short term, since money carried past the half is reset.
func Halftime(base engine.Strategy) *Policy {
	return New(base.Name()+halftimeSuffix, func(ctx engine.Context) ([]float64, error) {
		if ctx.HalfEnding {
			return best(ctx.Dim()), nil
		}
		return base.Decide(ctx)
	})
}
