package evolution

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/simulation"
	"github.com/signalnine/ecoround/strategy"
)

func smallRoster() []engine.Strategy {
	return []engine.Strategy{strategy.ShortTerm(), strategy.Champ(), strategy.Random()}
}

func smallTournament(sample int) *Tournament {
	cfg := DefaultTournamentConfig()
	cfg.SampleSize = sample
	cfg.Seed = 11
	return NewTournament(cfg, simulation.DefaultMatchConfig(), nil)
}

func TestInteractionMatrixShape(t *testing.T) {
	roster := smallRoster()
	m, err := smallTournament(400).InteractionMatrix(context.Background(), roster)
	if err != nil {
		t.Fatalf("InteractionMatrix failed: %v", err)
	}
	if m.Size() != len(roster) {
		t.Fatalf("Expected %d strategies, got %d", len(roster), m.Size())
	}
	for i := range roster {
		if m.At(i, i) != SelfPlay {
			t.Errorf("Diagonal (%d, %d) = %v, want %v", i, i, m.At(i, i), SelfPlay)
		}
		if m.Names[i] != roster[i].Name() {
			t.Errorf("Name %d = %q, want %q", i, m.Names[i], roster[i].Name())
		}
		for j := range roster {
			v := m.At(i, j)
			if v < 0 || v > 1 {
				t.Errorf("Entry (%d, %d) = %v outside [0, 1]", i, j, v)
			}
			if scaled := v * 1000; math.Abs(scaled-math.Round(scaled)) > 1e-9 {
				t.Errorf("Entry (%d, %d) = %v not rounded to 3 places", i, j, v)
			}
			if i != j {
				// First-to matches never draw, so the two cells share one sample.
				if sum := v + m.At(j, i); math.Abs(sum-1) > 1e-3+1e-9 {
					t.Errorf("Entries (%d, %d) and (%d, %d) sum to %v", i, j, j, i, sum)
				}
			}
		}
	}
}

func TestInteractionMatrixSharesOneSamplePerPair(t *testing.T) {
	roster := []engine.Strategy{strategy.ShortTerm(), strategy.EcoTil4()}
	tour := smallTournament(200)
	tour.Config.DecimalPlaces = 6

	pairs := 0
	tour.OnPairComplete = func(r PairResult) {
		pairs++
		if r.Row != 0 || r.Col != 1 {
			t.Errorf("Pair played as (%d, %d), want (0, 1)", r.Row, r.Col)
		}
	}
	m, err := tour.InteractionMatrix(context.Background(), roster)
	if err != nil {
		t.Fatalf("InteractionMatrix failed: %v", err)
	}
	if pairs != 1 {
		t.Errorf("Expected one sample for two strategies, got %d", pairs)
	}
	if sum := m.At(0, 1) + m.At(1, 0); math.Abs(sum-1) > 1e-9 {
		t.Errorf("m[0][1] + m[1][0] = %v, want 1", sum)
	}
}

func TestInteractionMatrixDrawsSplitBothCells(t *testing.T) {
	match := simulation.DefaultMatchConfig()
	match.Mode = simulation.FixedRounds
	match.PlayTo = 2
	cfg := DefaultTournamentConfig()
	cfg.SampleSize = 300
	cfg.DecimalPlaces = 6
	tour := NewTournament(cfg, match, nil)

	var stats simulation.AggregatedStats
	tour.OnPairComplete = func(r PairResult) { stats = r.Stats }
	m, err := tour.InteractionMatrix(context.Background(), []engine.Strategy{strategy.Random(), strategy.ShortTerm()})
	if err != nil {
		t.Fatalf("InteractionMatrix failed: %v", err)
	}
	if stats.Draws == 0 {
		t.Fatal("Expected some drawn two-round matches")
	}
	want := (float64(stats.Player1Wins) + float64(stats.Draws)/2) / float64(stats.TotalMatches)
	if math.Abs(m.At(1, 0)-want) > 1e-6 {
		t.Errorf("m[1][0] = %v, want %v", m.At(1, 0), want)
	}
	if sum := m.At(0, 1) + m.At(1, 0); math.Abs(sum-1) > 2e-6 {
		t.Errorf("m[0][1] + m[1][0] = %v, want 1", sum)
	}
}

func TestInteractionMatrixIsDeterministic(t *testing.T) {
	roster := smallRoster()

	serial := smallTournament(50)
	serial.Config.Workers = 1
	a, err := serial.InteractionMatrix(context.Background(), roster)
	if err != nil {
		t.Fatalf("InteractionMatrix failed: %v", err)
	}

	wide := smallTournament(50)
	wide.Config.Workers = 6
	b, err := wide.InteractionMatrix(context.Background(), roster)
	if err != nil {
		t.Fatalf("InteractionMatrix failed: %v", err)
	}

	if !reflect.DeepEqual(a.Values, b.Values) {
		t.Errorf("Worker count changed the matrix:\n%v\n%v", a.Values, b.Values)
	}
}

func TestInteractionMatrixReportsPairs(t *testing.T) {
	tour := smallTournament(10)
	seen := make(map[[2]int]bool)
	tour.OnPairComplete = func(r PairResult) {
		seen[[2]int{r.Row, r.Col}] = true
		if r.Stats.TotalMatches != 10 {
			t.Errorf("Pair (%d, %d) played %d matches", r.Row, r.Col, r.Stats.TotalMatches)
		}
	}
	if _, err := tour.InteractionMatrix(context.Background(), smallRoster()); err != nil {
		t.Fatalf("InteractionMatrix failed: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 pairs, got %d", len(seen))
	}
	for k := range seen {
		if k[0] >= k[1] {
			t.Errorf("Pair %v is not above the diagonal", k)
		}
	}
}

func TestInteractionMatrixRejectsBadInput(t *testing.T) {
	tour := smallTournament(0)
	if _, err := tour.InteractionMatrix(context.Background(), smallRoster()); !errors.Is(err, engine.ErrConfiguration) {
		t.Errorf("Zero sample size: expected ErrConfiguration, got %v", err)
	}

	tour = smallTournament(10)
	if _, err := tour.InteractionMatrix(context.Background(), nil); !errors.Is(err, engine.ErrConfiguration) {
		t.Errorf("Empty roster: expected ErrConfiguration, got %v", err)
	}

	tour.Match.PlayTo = 0
	if _, err := tour.InteractionMatrix(context.Background(), smallRoster()); !errors.Is(err, engine.ErrConfiguration) {
		t.Errorf("Zero play_to: expected ErrConfiguration, got %v", err)
	}
}

func TestInteractionMatrixAbortsOnFailure(t *testing.T) {
	broken := strategy.New("broken", func(engine.Context) ([]float64, error) {
		return []float64{2}, nil
	})
	roster := append(smallRoster(), broken)
	_, err := smallTournament(5).InteractionMatrix(context.Background(), roster)
	if !errors.Is(err, engine.ErrInvalidDistribution) {
		t.Errorf("Expected ErrInvalidDistribution, got %v", err)
	}
}

func TestScoreCountsDrawsAsHalf(t *testing.T) {
	tour := smallTournament(4)
	tour.Config.DecimalPlaces = 2
	if got := tour.score(1, 1, 4); got != 0.38 {
		t.Errorf("score = %v, want 0.38", got)
	}
	if got := tour.score(2, 1, 4); got != 0.63 {
		t.Errorf("score = %v, want 0.63", got)
	}

	tour.Config.DecimalPlaces = 3
	if got := tour.score(1, 0, 3); got != 0.333 {
		t.Errorf("score = %v, want 0.333", got)
	}
	if got := tour.score(0, 0, 0); got != 0 {
		t.Errorf("score of an empty sample = %v, want 0", got)
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		value  string
		places int
		want   float64
	}{
		{"0.1235", 3, 0.124},
		{"0.1234", 3, 0.123},
		{"0.5", 0, 1},
		{"0.66666", 1, 0.7},
	}
	for _, tt := range tests {
		if got := RoundTo(decimal.RequireFromString(tt.value), tt.places); got != tt.want {
			t.Errorf("RoundTo(%s, %d) = %v, want %v", tt.value, tt.places, got, tt.want)
		}
	}
}

func TestPairTasksCoverUpperTriangle(t *testing.T) {
	tasks := pairTasks(4, 1)
	if len(tasks) != 6 {
		t.Fatalf("Expected 6 tasks, got %d", len(tasks))
	}
	again := pairTasks(4, 1)
	for i, task := range tasks {
		if task.row >= task.col {
			t.Errorf("Task %d is (%d, %d), want row < col", i, task.row, task.col)
		}
		if task != again[i] {
			t.Errorf("Task %d is not reproducible", i)
		}
	}
}
