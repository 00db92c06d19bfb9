package engine

// Menu is the part of the base payoff table visible in a round. Its rows
// are A's affordable tiers and its columns are B's.
type Menu struct {
	rows int
	cols int
}

// NewMenu sizes the menu from both players' resources.
func NewMenu(resourceA, resourceB float64) Menu {
	return Menu{rows: Tier(resourceA), cols: Tier(resourceB)}
}

// Rows is the number of actions open to player A.
func (m Menu) Rows() int { return m.rows }

// Cols is the number of actions open to player B.
func (m Menu) Cols() int { return m.cols }

// Dim is the number of actions open to the given seat.
func (m Menu) Dim(slot Slot) int {
	if slot == PlayerA {
		return m.rows
	}
	return m.cols
}

// Degenerate reports whether either side has no affordable action.
func (m Menu) Degenerate() bool {
	return m.rows == 0 || m.cols == 0
}

// At returns A's win probability for the action pair (i, j).
func (m Menu) At(i, j int) float64 {
	return baseTable[i][j]
}

// Matrix returns the menu as a fresh rows×cols slice.
func (m Menu) Matrix() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		copy(out[i], baseTable[i][:m.cols])
	}
	return out
}

// Transposed returns the menu from B's point of view: rows are B's actions
// and entries are B's win probabilities.
func (m Menu) Transposed() [][]float64 {
	out := make([][]float64, m.cols)
	for j := range out {
		out[j] = make([]float64, m.rows)
		for i := 0; i < m.rows; i++ {
			out[j][i] = 1 - baseTable[i][j]
		}
	}
	return out
}
