// Package nash finds Nash equilibria of small two-player matrix games by
// support enumeration.
package nash

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tolerance used when checking that a strategy respects its support.
const supportTolerance = 1e-16

// Tolerance used when comparing best-response payoffs.
const payoffTolerance = 1e-12

// Equilibrium is a pair of mixed strategies, one per player.
type Equilibrium struct {
	Row []float64
	Col []float64
}

// Game is a bimatrix game. A holds the row player's payoffs, B the column
// player's.
type Game struct {
	A [][]float64
	B [][]float64
}

// ZeroSum builds the game (A, -A).
func ZeroSum(a [][]float64) Game {
	b := make([][]float64, len(a))
	for i, row := range a {
		b[i] = make([]float64, len(row))
		for j, v := range row {
			b[i][j] = -v
		}
	}
	return Game{A: a, B: b}
}

// Shape returns the number of row and column strategies.
func (g Game) Shape() (int, int) {
	if len(g.A) == 0 {
		return 0, 0
	}
	return len(g.A), len(g.A[0])
}

// SupportEnumeration lazily yields the equilibria of g. Support pairs are
// visited by increasing size, lexicographically within a size, and only
// pairs of equal size are tried.
func (g Game) SupportEnumeration() iter.Seq[Equilibrium] {
	return func(yield func(Equilibrium) bool) {
		rows, cols := g.Shape()
		if rows == 0 || cols == 0 {
			return
		}
		a, bt := dense(g.A), dense(g.B).T()
		for _, s1 := range powerset(rows) {
			for _, s2 := range powerset(cols) {
				if len(s1) != len(s2) {
					continue
				}
				rowStrat, ok := solveIndifference(bt, s2, s1)
				if !ok || !obeysSupport(rowStrat, s1) {
					continue
				}
				colStrat, ok := solveIndifference(a, s1, s2)
				if !ok || !obeysSupport(colStrat, s2) {
					continue
				}
				if !isEquilibrium(a, bt, rowStrat, colStrat, s1, s2) {
					continue
				}
				if !yield(Equilibrium{Row: rowStrat, Col: colStrat}) {
					return
				}
			}
		}
	}
}

// First returns the first equilibrium support enumeration produces.
func (g Game) First() (Equilibrium, bool) {
	for eq := range g.SupportEnumeration() {
		return eq, true
	}
	return Equilibrium{}, false
}

// isEquilibrium checks that both supports are best responses: a holds the
// row player's payoffs and bt the column player's, transposed.
func isEquilibrium(a, bt mat.Matrix, row, col []float64, s1, s2 []int) bool {
	var rowPayoffs, colPayoffs mat.VecDense
	rowPayoffs.MulVec(a, mat.NewVecDense(len(col), col))
	colPayoffs.MulVec(bt, mat.NewVecDense(len(row), row))
	return mat.Max(&rowPayoffs)-maxOver(&rowPayoffs, s1) <= payoffTolerance &&
		mat.Max(&colPayoffs)-maxOver(&colPayoffs, s2) <= payoffTolerance
}

// solveIndifference finds a distribution over columns, supported on cols,
// that makes every row in rows earn the same payoff against m. Singular and
// ill-conditioned systems have no usable solution.
func solveIndifference(m mat.Matrix, rows, cols []int) ([]float64, bool) {
	_, n := m.Dims()
	inSupport := make([]bool, n)
	for _, c := range cols {
		inSupport[c] = true
	}

	// One equation per adjacent pair of support rows, one per column
	// outside the support, and one for the total.
	if len(rows)-1+n-len(cols)+1 != n {
		return nil, false
	}
	coef := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	eq := 0
	for k := 0; k+1 < len(rows); k++ {
		for j := 0; j < n; j++ {
			coef.Set(eq, j, m.At(rows[k+1], j)-m.At(rows[k], j))
		}
		eq++
	}
	for j := 0; j < n; j++ {
		if !inSupport[j] {
			coef.Set(eq, j, 1)
			eq++
		}
	}
	for j := 0; j < n; j++ {
		coef.Set(eq, j, 1)
	}
	rhs.SetVec(eq, 1)

	var prob mat.VecDense
	if err := prob.SolveVec(coef, rhs); err != nil {
		return nil, false
	}
	out := make([]float64, n)
	for j := range out {
		if out[j] = prob.AtVec(j); out[j] < 0 || math.IsNaN(out[j]) {
			return nil, false
		}
	}
	return out, true
}

func obeysSupport(strategy []float64, support []int) bool {
	in := make([]bool, len(strategy))
	for _, s := range support {
		in[s] = true
	}
	for i, v := range strategy {
		if in[i] && v <= supportTolerance {
			return false
		}
		if !in[i] && v > supportTolerance {
			return false
		}
	}
	return true
}

// powerset lists the non-empty subsets of {0..n-1} by size, then
// lexicographically.
func powerset(n int) [][]int {
	var out [][]int
	for size := 1; size <= n; size++ {
		out = append(out, combinations(n, size)...)
	}
	return out
}

func combinations(n, k int) [][]int {
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		c := make([]int, k)
		copy(c, idx)
		out = append(out, c)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// dense copies a rectangular [][]float64 into a matrix.
func dense(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}

// maxOver returns the largest entry of v among idx.
func maxOver(v mat.Vector, idx []int) float64 {
	best := math.Inf(-1)
	for _, i := range idx {
		best = math.Max(best, v.AtVec(i))
	}
	return best
}
