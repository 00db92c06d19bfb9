// Package store persists tournament runs in SQLite.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run kinds.
const (
	KindTournament = "tournament"
	KindReplicator = "replicator"
)

// DB represents the database interface
type DB interface {
	Close() error
	Migrate() error
	SaveRun(ctx context.Context, run *Run) error
	SaveCells(ctx context.Context, runID string, cells []Cell) error
	SaveTrajectory(ctx context.Context, runID string, points []TrajectoryPoint) error
	SaveRecord(ctx context.Context, run *Run, cells []Cell, points []TrajectoryPoint) error
	GetRun(ctx context.Context, id string) (*Run, error)
	GetCells(ctx context.Context, runID string) ([]Cell, error)
	GetTrajectory(ctx context.Context, runID string) ([]TrajectoryPoint, error)
	ListRuns(ctx context.Context, limit, offset int) ([]Run, error)
}

// Run is one stored tournament or replicator run.
type Run struct {
	ID            string    `json:"id" db:"id"`
	Kind          string    `json:"kind" db:"kind"`
	Mode          string    `json:"mode" db:"mode"`
	PlayTo        int       `json:"play_to" db:"play_to"`
	SampleSize    int       `json:"sample_size" db:"sample_size"`
	Seed          int64     `json:"seed" db:"seed"`
	Strategies    []string  `json:"strategies" db:"strategies"` // JSON array
	Config        string    `json:"config,omitempty" db:"config"` // JSON string
	EngineVersion string    `json:"engine_version" db:"engine_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Cell is one interaction-matrix entry, row strategy as player A.
type Cell struct {
	Row    int     `json:"row" db:"row_idx"`
	Col    int     `json:"col" db:"col_idx"`
	Value  float64 `json:"value" db:"value"`
	Wins   int     `json:"wins" db:"wins"`
	Losses int     `json:"losses" db:"losses"`
	Draws  int     `json:"draws" db:"draws"`
}

// TrajectoryPoint is the population at one replicator timepoint.
type TrajectoryPoint struct {
	Step   int       `json:"step" db:"step"`
	Time   float64   `json:"time" db:"time"`
	Shares []float64 `json:"shares" db:"shares"` // JSON array
}
