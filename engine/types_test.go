package engine

import (
	"errors"
	"testing"
)

func TestTier(t *testing.T) {
	tests := []struct {
		resource float64
		want     int
	}{
		{-2, 0},
		{0, 0},
		{0.99, 0},
		{1, 1},
		{2.5, 2},
		{3.5, 3},
		{4, 4},
		{15.5, 4},
	}
	for _, tt := range tests {
		if got := Tier(tt.resource); got != tt.want {
			t.Errorf("Tier(%v) = %d, want %d", tt.resource, got, tt.want)
		}
	}
}

func TestMenuDimensionsAndEntries(t *testing.T) {
	table := BaseTable()
	for a := 1.0; a <= 16; a += 0.5 {
		for b := 1.0; b <= 16; b += 0.5 {
			m := NewMenu(a, b)
			wantRows, wantCols := Tier(a), Tier(b)
			if m.Rows() != wantRows || m.Cols() != wantCols {
				t.Fatalf("NewMenu(%v, %v) is %dx%d, want %dx%d", a, b, m.Rows(), m.Cols(), wantRows, wantCols)
			}
			mat := m.Matrix()
			if len(mat) != wantRows {
				t.Fatalf("Matrix rows = %d, want %d", len(mat), wantRows)
			}
			for i := range mat {
				if len(mat[i]) != wantCols {
					t.Fatalf("Matrix row %d has %d cols, want %d", i, len(mat[i]), wantCols)
				}
				for j := range mat[i] {
					if mat[i][j] != table[i][j] {
						t.Errorf("menu(%v,%v)[%d][%d] = %v, want %v", a, b, i, j, mat[i][j], table[i][j])
					}
				}
			}
		}
	}
}

func TestMenuDegenerate(t *testing.T) {
	if !NewMenu(0.5, 3).Degenerate() {
		t.Error("Expected menu with A below 1 to be degenerate")
	}
	if !NewMenu(3, 0).Degenerate() {
		t.Error("Expected menu with B at 0 to be degenerate")
	}
	if NewMenu(1, 1).Degenerate() {
		t.Error("Menu 1x1 should not be degenerate")
	}
}

func TestMenuTransposed(t *testing.T) {
	m := NewMenu(2, 3)
	tr := m.Transposed()
	if len(tr) != 3 || len(tr[0]) != 2 {
		t.Fatalf("Transposed is %dx%d, want 3x2", len(tr), len(tr[0]))
	}
	if tr[2][1] != 1-WinProbability(1, 2) {
		t.Errorf("Transposed[2][1] = %v, want %v", tr[2][1], 1-WinProbability(1, 2))
	}
}

func TestBaseTableIsCopy(t *testing.T) {
	table := BaseTable()
	table[0][0] = 99
	if WinProbability(0, 0) != 0.5 {
		t.Error("Mutating a BaseTable copy changed the package table")
	}
}

func TestLossReward(t *testing.T) {
	if got := LossReward(int(FullBuy), 0); got != -2 {
		t.Errorf("LossReward(full, 0) = %v, want -2", got)
	}
	if got := LossReward(int(Eco), 4); got != 3.5 {
		t.Errorf("LossReward(eco, 4) = %v, want 3.5", got)
	}
}

func TestHistoryHelpers(t *testing.T) {
	h := History{
		{Points: [2]int{0, 0}, Resources: [2]float64{1, 1}},
		{Points: [2]int{1, 0}, Resources: [2]float64{3, 2.5}, Choice: &Choice{Actions: [2]int{0, 0}, Winner: PlayerA}},
		{Points: [2]int{1, 1}, Resources: [2]float64{4.5, 4.5}, Choice: &Choice{Actions: [2]int{0, 1}, Winner: PlayerB}},
	}
	if h.Rounds() != 2 {
		t.Errorf("Rounds() = %d, want 2", h.Rounds())
	}
	if got := h.Choices(PlayerB); len(got) != 2 || got[1] != 1 {
		t.Errorf("Choices(B) = %v, want [0 1]", got)
	}
	if got := h.PointSeries(PlayerA); got[2] != 1 {
		t.Errorf("PointSeries(A) = %v", got)
	}
	clone := h.Clone()
	clone[1].Choice.Actions[0] = 3
	if h[1].Choice.Actions[0] != 0 {
		t.Error("Clone shares Choice with the original")
	}
	if (History{}).Final().Points != [2]int{} {
		t.Error("Final of empty history should be zero")
	}
}

func TestReplaySourceCycles(t *testing.T) {
	src := NewReplaySource(0.1, 0.2)
	got := []float64{src.Float64(), src.Float64(), src.Float64()}
	if got[0] != 0.1 || got[1] != 0.2 || got[2] != 0.1 {
		t.Errorf("ReplaySource draws = %v", got)
	}
	if src.Consumed() != 3 {
		t.Errorf("Consumed() = %d, want 3", src.Consumed())
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	if errors.Is(ErrInvalidDistribution, ErrDegenerateMenu) {
		t.Error("sentinel errors should not match each other")
	}
}
