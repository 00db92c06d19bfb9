package evolution

import (
	"fmt"
	"math"

	"github.com/signalnine/ecoround/engine"
)

// Replicator integration settings.
const (
	// MaxStep bounds the RK4 step between two requested timepoints.
	MaxStep = 0.05
	// ShareTolerance is the slack allowed when checking that shares sum to 1.
	ShareTolerance = 1e-6
)

// Linspace returns count evenly spaced values from start to end inclusive.
func Linspace(start, end float64, count int) []float64 {
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return []float64{start}
	}
	out := make([]float64, count)
	step := (end - start) / float64(count-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	out[count-1] = end
	return out
}

// UniformShares returns n equal shares.
func UniformShares(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}

// ReplicatorDynamics integrates x'_i = x_i((Ax)_i - x^T A x) from the given
// shares and returns the share vector at every timepoint. The first row is
// the initial shares at timepoints[0]. A nil shares vector starts uniform.
func ReplicatorDynamics(payoff [][]float64, shares []float64, timepoints []float64) ([][]float64, error) {
	n := len(payoff)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty payoff matrix", engine.ErrConfiguration)
	}
	for i, row := range payoff {
		if len(row) != n {
			return nil, fmt.Errorf("%w: payoff row %d has %d entries, want %d", engine.ErrConfiguration, i, len(row), n)
		}
	}
	if shares == nil {
		shares = UniformShares(n)
	}
	if err := validateShares(shares, n); err != nil {
		return nil, err
	}
	if len(timepoints) == 0 {
		return nil, fmt.Errorf("%w: no timepoints", engine.ErrConfiguration)
	}
	for i := 1; i < len(timepoints); i++ {
		if timepoints[i] < timepoints[i-1] {
			return nil, fmt.Errorf("%w: timepoints must be non-decreasing", engine.ErrConfiguration)
		}
	}

	x := append([]float64(nil), shares...)
	out := make([][]float64, 0, len(timepoints))
	out = append(out, append([]float64(nil), x...))

	for k := 1; k < len(timepoints); k++ {
		span := timepoints[k] - timepoints[k-1]
		steps := int(math.Ceil(span / MaxStep))
		if steps > 0 {
			h := span / float64(steps)
			for s := 0; s < steps; s++ {
				x = rk4Step(payoff, x, h)
			}
		}
		out = append(out, append([]float64(nil), x...))
	}
	return out, nil
}

func validateShares(shares []float64, n int) error {
	if len(shares) != n {
		return fmt.Errorf("%w: %d initial shares for %d strategies", engine.ErrConfiguration, len(shares), n)
	}
	sum := 0.0
	for i, s := range shares {
		if s < 0 || math.IsNaN(s) {
			return fmt.Errorf("%w: share %d is %v", engine.ErrConfiguration, i, s)
		}
		sum += s
	}
	if math.Abs(sum-1) > ShareTolerance {
		return fmt.Errorf("%w: shares sum to %v", engine.ErrConfiguration, sum)
	}
	return nil
}

// replicatorRate evaluates the replicator field at x.
func replicatorRate(a [][]float64, x []float64) []float64 {
	fitness := make([]float64, len(x))
	mean := 0.0
	for i, row := range a {
		for j, v := range row {
			fitness[i] += v * x[j]
		}
		mean += x[i] * fitness[i]
	}
	rate := make([]float64, len(x))
	for i := range x {
		rate[i] = x[i] * (fitness[i] - mean)
	}
	return rate
}

// rk4Step advances x by h. The result is clipped at zero and renormalised
// so that floating-point drift never leaves the simplex.
func rk4Step(a [][]float64, x []float64, h float64) []float64 {
	axpy := func(k []float64, scale float64) []float64 {
		out := make([]float64, len(x))
		for i := range x {
			out[i] = x[i] + scale*k[i]
		}
		return out
	}

	k1 := replicatorRate(a, x)
	k2 := replicatorRate(a, axpy(k1, h/2))
	k3 := replicatorRate(a, axpy(k2, h/2))
	k4 := replicatorRate(a, axpy(k3, h))

	next := make([]float64, len(x))
	sum := 0.0
	for i := range x {
		next[i] = x[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
		if next[i] < 0 {
			next[i] = 0
		}
		sum += next[i]
	}
	if sum > 0 {
		for i := range next {
			next[i] /= sum
		}
	}
	return next
}
