package wire

import (
	"errors"
	"reflect"
	"testing"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/simulation"
	"github.com/signalnine/ecoround/strategy"
)

func TestMatchRoundTrip(t *testing.T) {
	for _, mode := range []simulation.Mode{simulation.FirstTo, simulation.Halves} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := simulation.DefaultMatchConfig()
			cfg.Mode = mode
			played, err := simulation.PlayMatch(strategy.ShortTerm(), strategy.Random(), cfg, engine.NewSource(7))
			if err != nil {
				t.Fatalf("PlayMatch failed: %v", err)
			}

			got, err := DecodeMatch(EncodeMatch(played))
			if err != nil {
				t.Fatalf("DecodeMatch failed: %v", err)
			}
			played.DurationNs = 0
			if !reflect.DeepEqual(got, played) {
				t.Errorf("Round trip changed the match:\ngot  %+v\nwant %+v", got, played)
			}
		})
	}
}

func TestMatchWithoutHistory(t *testing.T) {
	r := simulation.MatchResult{
		Players:  [2]string{"a", "b"},
		Points:   [2]int{6, 6},
		WinnerID: -1,
		Rounds:   12,
		Tension: simulation.TensionMetrics{
			LeadChanges: 3,
			TotalRounds: 12,
		},
	}
	got, err := DecodeMatch(EncodeMatch(r))
	if err != nil {
		t.Fatalf("DecodeMatch failed: %v", err)
	}
	if !reflect.DeepEqual(got, r) {
		t.Errorf("got %+v, want %+v", got, r)
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	m := evolution.NewInteractionMatrix([]string{"short-term", "champ", "random"}, 250)
	m.Values[0][1], m.Values[1][0] = 0.612, 0.388
	m.Values[0][2], m.Values[2][0] = 0.9, 0.1
	m.Values[1][2], m.Values[2][1] = 0.75, 0.25

	got, err := DecodeMatrix(EncodeMatrix(m))
	if err != nil {
		t.Fatalf("DecodeMatrix failed: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("got %+v, want %+v", got, m)
	}
}

func TestTrajectoryRoundTrip(t *testing.T) {
	m := evolution.NewInteractionMatrix([]string{"a", "b"}, 10)
	m.Values[0][1], m.Values[1][0] = 0.7, 0.3
	traj, err := evolution.Evolve(m, nil, evolution.Linspace(0, 10, 5))
	if err != nil {
		t.Fatalf("Evolve failed: %v", err)
	}

	got, err := DecodeTrajectory(EncodeTrajectory(traj))
	if err != nil {
		t.Fatalf("DecodeTrajectory failed: %v", err)
	}
	if !reflect.DeepEqual(got.Names, traj.Names) || !reflect.DeepEqual(got.Times, traj.Times) {
		t.Errorf("Axes differ: %+v", got)
	}
	for k := range traj.Shares {
		if !reflect.DeepEqual(got.Shares[k], traj.Shares[k]) {
			t.Errorf("Row %d = %v, want %v", k, got.Shares[k], traj.Shares[k])
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	garbage := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	for _, buf := range [][]byte{nil, {1, 2, 3}, garbage} {
		if _, err := DecodeMatch(buf); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeMatch(%v): expected ErrMalformed, got %v", buf, err)
		}
		if _, err := DecodeMatrix(buf); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeMatrix(%v): expected ErrMalformed, got %v", buf, err)
		}
		if _, err := DecodeTrajectory(buf); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeTrajectory(%v): expected ErrMalformed, got %v", buf, err)
		}
	}
}

func TestDecodeMatrixRejectsShapeMismatch(t *testing.T) {
	traj := &evolution.Trajectory{
		Names:  []string{"a", "b"},
		Times:  []float64{0},
		Shares: [][]float64{{0.5, 0.5}},
	}
	// Same slot layout as a matrix with two names but a single value.
	if _, err := DecodeMatrix(EncodeTrajectory(traj)); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}
