package evolution

import (
	"fmt"

	"github.com/signalnine/ecoround/engine"
)

// SelfPlay is the fixed diagonal entry of an interaction matrix.
const SelfPlay = 0.5

// InteractionMatrix holds, at (i, j), the estimated probability that
// strategy i playing as A beats strategy j.
type InteractionMatrix struct {
	Names      []string    `json:"names"`
	Values     [][]float64 `json:"values"`
	SampleSize int         `json:"sample_size"`
}

// NewInteractionMatrix creates a matrix with the diagonal set and every
// other entry zero.
func NewInteractionMatrix(names []string, sampleSize int) *InteractionMatrix {
	values := make([][]float64, len(names))
	for i := range values {
		values[i] = make([]float64, len(names))
		values[i][i] = SelfPlay
	}
	return &InteractionMatrix{
		Names:      append([]string(nil), names...),
		Values:     values,
		SampleSize: sampleSize,
	}
}

// Size returns the number of strategies.
func (m *InteractionMatrix) Size() int {
	return len(m.Names)
}

// At returns entry (i, j).
func (m *InteractionMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Index returns the row of the named strategy, or -1.
func (m *InteractionMatrix) Index(name string) int {
	for i, n := range m.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Validate checks that the matrix is square, labelled, and probability valued.
func (m *InteractionMatrix) Validate() error {
	if len(m.Values) != len(m.Names) {
		return fmt.Errorf("%w: %d rows for %d names", engine.ErrConfiguration, len(m.Values), len(m.Names))
	}
	for i, row := range m.Values {
		if len(row) != len(m.Names) {
			return fmt.Errorf("%w: row %d has %d entries, want %d", engine.ErrConfiguration, i, len(row), len(m.Names))
		}
		for j, v := range row {
			if v < 0 || v > 1 {
				return fmt.Errorf("%w: entry (%d, %d) = %v outside [0, 1]", engine.ErrConfiguration, i, j, v)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *InteractionMatrix) Clone() *InteractionMatrix {
	out := NewInteractionMatrix(m.Names, m.SampleSize)
	for i, row := range m.Values {
		copy(out.Values[i], row)
	}
	return out
}
