package evolution

import (
	"errors"
	"math"
	"testing"

	"github.com/signalnine/ecoround/engine"
)

func TestLinspace(t *testing.T) {
	got := Linspace(0, 10, 5)
	want := []float64{0, 2.5, 5, 7.5, 10}
	if len(got) != len(want) {
		t.Fatalf("Linspace length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := Linspace(3, 9, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("Linspace(3, 9, 1) = %v", got)
	}
	if got := Linspace(0, 1, 0); got != nil {
		t.Errorf("Linspace(0, 1, 0) = %v", got)
	}
}

func TestReplicatorMatchesLogistic(t *testing.T) {
	// Strategy 0 out-scores strategy 1 by 0.4 at every mix, so its share
	// follows 1 / (1 + e^(-0.4t)).
	payoff := [][]float64{{0.5, 0.9}, {0.1, 0.5}}
	times := Linspace(0, 20, 11)
	rows, err := ReplicatorDynamics(payoff, nil, times)
	if err != nil {
		t.Fatalf("ReplicatorDynamics failed: %v", err)
	}
	for k, tp := range times {
		want := 1 / (1 + math.Exp(-0.4*tp))
		if math.Abs(rows[k][0]-want) > 1e-6 {
			t.Errorf("t=%v: share = %v, want %v", tp, rows[k][0], want)
		}
	}
}

func TestReplicatorStaysOnSimplex(t *testing.T) {
	payoff := [][]float64{
		{0.5, 0.7, 0.2, 0.9},
		{0.3, 0.5, 0.8, 0.4},
		{0.8, 0.2, 0.5, 0.6},
		{0.1, 0.6, 0.4, 0.5},
	}
	rows, err := ReplicatorDynamics(payoff, []float64{0.1, 0.2, 0.3, 0.4}, Linspace(0, 200, 101))
	if err != nil {
		t.Fatalf("ReplicatorDynamics failed: %v", err)
	}
	for k, row := range rows {
		sum := 0.0
		for _, x := range row {
			if x < 0 {
				t.Fatalf("Negative share at step %d: %v", k, row)
			}
			sum += x
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("Shares at step %d sum to %v", k, sum)
		}
	}
	if rows[0][3] != 0.4 {
		t.Errorf("First row must be the initial shares, got %v", rows[0])
	}
}

func TestReplicatorConstantPayoffIsStationary(t *testing.T) {
	payoff := [][]float64{{0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}}
	start := []float64{0.2, 0.3, 0.5}
	rows, err := ReplicatorDynamics(payoff, start, Linspace(0, 50, 6))
	if err != nil {
		t.Fatalf("ReplicatorDynamics failed: %v", err)
	}
	for i, x := range rows[len(rows)-1] {
		if math.Abs(x-start[i]) > 1e-12 {
			t.Errorf("Share %d drifted to %v", i, x)
		}
	}
}

func TestReplicatorRejectsBadInput(t *testing.T) {
	square := [][]float64{{0.5, 0.6}, {0.4, 0.5}}
	times := Linspace(0, 1, 3)
	tests := []struct {
		name   string
		payoff [][]float64
		shares []float64
		times  []float64
	}{
		{"empty matrix", nil, nil, times},
		{"ragged matrix", [][]float64{{0.5, 0.6}, {0.4}}, nil, times},
		{"wrong share count", square, []float64{1}, times},
		{"negative share", square, []float64{1.5, -0.5}, times},
		{"shares do not sum to one", square, []float64{0.3, 0.3}, times},
		{"no timepoints", square, nil, nil},
		{"decreasing timepoints", square, nil, []float64{0, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReplicatorDynamics(tt.payoff, tt.shares, tt.times); !errors.Is(err, engine.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestUniformShares(t *testing.T) {
	shares := UniformShares(4)
	for _, s := range shares {
		if s != 0.25 {
			t.Errorf("Expected 0.25, got %v", s)
		}
	}
}
