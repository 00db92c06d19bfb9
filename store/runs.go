package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/signalnine/ecoround/evolution"
)

// Recorder collects per-pair tallies while a tournament runs. Hook its
// Observe method into Tournament.OnPairComplete.
type Recorder struct {
	mu    sync.Mutex
	cells []Cell
}

// Observe records both cells of one finished pair.
func (r *Recorder) Observe(p evolution.PairResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wins, losses, draws := int(p.Stats.Player0Wins), int(p.Stats.Player1Wins), int(p.Stats.Draws)
	r.cells = append(r.cells,
		Cell{Row: p.Row, Col: p.Col, Value: p.Value, Wins: wins, Losses: losses, Draws: draws},
		Cell{Row: p.Col, Col: p.Row, Value: p.Reverse, Wins: losses, Losses: wins, Draws: draws},
	)
}

// Cells returns the recorded cells.
func (r *Recorder) Cells() []Cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cell(nil), r.cells...)
}

// Record is a complete stored run.
type Record struct {
	Run        *Run                         `json:"run"`
	Matrix     *evolution.InteractionMatrix `json:"matrix,omitempty"`
	Trajectory *evolution.Trajectory        `json:"trajectory,omitempty"`
}

// SaveTournament stores a tournament's configuration, matrix and optional
// trajectory in one transaction, and returns the new run's ID. Cells not
// supplied by a recorder are derived from the matrix without tallies.
func SaveTournament(ctx context.Context, db DB, t *evolution.Tournament, m *evolution.InteractionMatrix,
	cells []Cell, traj *evolution.Trajectory, version string) (string, error) {
	config, err := json.Marshal(struct {
		Tournament evolution.TournamentConfig `json:"tournament"`
		Match      any                        `json:"match"`
	}{t.Config, t.Match})
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}

	kind := KindTournament
	if traj != nil {
		kind = KindReplicator
	}
	run := &Run{
		Kind:          kind,
		Mode:          string(t.Match.Mode),
		PlayTo:        t.Match.PlayTo,
		SampleSize:    m.SampleSize,
		Seed:          t.Config.Seed,
		Strategies:    m.Names,
		Config:        string(config),
		EngineVersion: version,
	}
	if cells == nil {
		cells = matrixCells(m)
	}
	var points []TrajectoryPoint
	if traj != nil {
		points = trajectoryPoints(traj)
	}
	if err := db.SaveRecord(ctx, run, cells, points); err != nil {
		return "", err
	}
	return run.ID, nil
}

// LoadRecord loads a run with its matrix and trajectory.
func LoadRecord(ctx context.Context, db DB, id string) (*Record, error) {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	cells, err := db.GetCells(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load matrix: %w", err)
	}
	points, err := db.GetTrajectory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load trajectory: %w", err)
	}

	rec := &Record{Run: run}
	rec.Matrix = evolution.NewInteractionMatrix(run.Strategies, run.SampleSize)
	for _, c := range cells {
		if c.Row >= rec.Matrix.Size() || c.Col >= rec.Matrix.Size() {
			return nil, fmt.Errorf("run %s: cell (%d, %d) outside %d strategies", id, c.Row, c.Col, rec.Matrix.Size())
		}
		rec.Matrix.Values[c.Row][c.Col] = c.Value
	}
	if len(points) > 0 {
		traj := &evolution.Trajectory{Names: run.Strategies}
		for _, p := range points {
			traj.Times = append(traj.Times, p.Time)
			traj.Shares = append(traj.Shares, p.Shares)
		}
		rec.Trajectory = traj
	}
	return rec, nil
}

func matrixCells(m *evolution.InteractionMatrix) []Cell {
	var cells []Cell
	for i, row := range m.Values {
		for j, v := range row {
			if i == j {
				continue
			}
			cells = append(cells, Cell{Row: i, Col: j, Value: v})
		}
	}
	return cells
}

func trajectoryPoints(t *evolution.Trajectory) []TrajectoryPoint {
	points := make([]TrajectoryPoint, len(t.Shares))
	for k, shares := range t.Shares {
		points[k] = TrajectoryPoint{Step: k, Time: t.Times[k], Shares: shares}
	}
	return points
}
