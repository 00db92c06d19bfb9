package evolution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/strategy"
)

func TestSweepRange(t *testing.T) {
	got := SweepRange(4)
	if len(got) != 4 || got[0] != 0 || got[3] != 3 {
		t.Errorf("SweepRange(4) = %v", got)
	}
	if got := SweepRange(-2); len(got) != 0 {
		t.Errorf("SweepRange(-2) = %v", got)
	}
}

func TestSweep(t *testing.T) {
	tour := smallTournament(40)
	points, err := tour.Sweep(context.Background(), strategy.EcoFirstN(), strategy.ShortTerm(), SweepRange(4))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("Expected 4 points, got %d", len(points))
	}
	for i, p := range points {
		if p.N != i {
			t.Errorf("Point %d has n=%d", i, p.N)
		}
		if p.SubjectWinRate < 0 || p.OpponentWinRate < 0 || p.SubjectWinRate+p.OpponentWinRate > 1+1e-12 {
			t.Errorf("Point %d has rates %v / %v", i, p.SubjectWinRate, p.OpponentWinRate)
		}
	}

	again, err := tour.Sweep(context.Background(), strategy.EcoFirstN(), strategy.ShortTerm(), SweepRange(4))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	for i := range points {
		if points[i] != again[i] {
			t.Errorf("Sweep is not reproducible at n=%d", i)
		}
	}
}

func TestSweepRejectsEmptyRange(t *testing.T) {
	_, err := smallTournament(10).Sweep(context.Background(), strategy.EcoFirstN(), strategy.ShortTerm(), nil)
	if !errors.Is(err, engine.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestCensus(t *testing.T) {
	tour := smallTournament(1)
	got, err := tour.Census(context.Background(), 60)
	if err != nil {
		t.Fatalf("Census failed: %v", err)
	}
	if got.Games != 60 {
		t.Errorf("Games = %d", got.Games)
	}
	if got.Distinct < 2 || got.Distinct > 120 {
		t.Errorf("Distinct = %d, want within [2, 120]", got.Distinct)
	}
	if got.Longest < tour.Match.PlayTo || got.Longest > 2*tour.Match.PlayTo-1 {
		t.Errorf("Longest = %d outside [%d, %d]", got.Longest, tour.Match.PlayTo, 2*tour.Match.PlayTo-1)
	}

	again, err := tour.Census(context.Background(), 60)
	if err != nil {
		t.Fatalf("Census failed: %v", err)
	}
	if again != got {
		t.Errorf("Census is not reproducible: %+v vs %+v", got, again)
	}

	if _, err := tour.Census(context.Background(), 0); !errors.Is(err, engine.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestSequenceKey(t *testing.T) {
	if got := sequenceKey([]int{0, 3, 1}); got != "031" {
		t.Errorf("sequenceKey = %q", got)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	tour := smallTournament(25)
	m := NewInteractionMatrix([]string{"a", "b"}, 25)
	m.Values[0][1] = 0.64
	m.Values[1][0] = 0.36
	traj, err := Evolve(m, nil, Linspace(0, 5, 3))
	if err != nil {
		t.Fatalf("Evolve failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "runs", "checkpoint.json")
	if err := SaveCheckpoint(path, NewCheckpoint(tour, m, traj)); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file left behind")
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.Version != CheckpointVersion {
		t.Errorf("Version = %q", loaded.Version)
	}
	if loaded.Matrix.At(0, 1) != 0.64 || loaded.Tournament.SampleSize != 25 {
		t.Errorf("Loaded checkpoint differs: %+v", loaded)
	}
	if len(loaded.Trajectory.Shares) != 3 {
		t.Errorf("Expected 3 trajectory rows, got %d", len(loaded.Trajectory.Shares))
	}
	if loaded.Match.Mode != tour.Match.Mode {
		t.Errorf("Match mode = %q", loaded.Match.Mode)
	}
}

func TestCheckpointErrors(t *testing.T) {
	dir := t.TempDir()
	if err := SaveCheckpoint(filepath.Join(dir, "x.json"), nil); err == nil {
		t.Error("Expected error saving nil checkpoint")
	}
	if _, err := LoadCheckpoint(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error loading missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"version":"1.0"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCheckpoint(bad); err == nil {
		t.Error("Expected error loading checkpoint without a matrix")
	}
}
