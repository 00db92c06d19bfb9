package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) the database at path. Pragmas are
// set through the DSN so that every pooled connection gets them.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Open opens the database at path and runs migrations.
func Open(path string) (*SQLiteDB, error) {
	s, err := NewSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			play_to INTEGER NOT NULL,
			sample_size INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			strategies TEXT NOT NULL,
			config TEXT,
			engine_version TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cells (
			run_id TEXT NOT NULL,
			row_idx INTEGER NOT NULL,
			col_idx INTEGER NOT NULL,
			value REAL NOT NULL,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			draws INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, row_idx, col_idx),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS trajectory (
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			time REAL NOT NULL,
			shares TEXT NOT NULL,
			PRIMARY KEY (run_id, step),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// SaveRun saves a run, assigning an ID and timestamp when unset.
func (s *SQLiteDB) SaveRun(ctx context.Context, run *Run) error {
	return insertRun(ctx, s.db, run)
}

// SaveCells saves interaction-matrix entries for a run.
func (s *SQLiteDB) SaveCells(ctx context.Context, runID string, cells []Cell) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertCells(ctx, tx, runID, cells)
	})
}

// SaveTrajectory saves replicator timepoints for a run.
func (s *SQLiteDB) SaveTrajectory(ctx context.Context, runID string, points []TrajectoryPoint) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertTrajectory(ctx, tx, runID, points)
	})
}

// SaveRecord saves a run with its cells and trajectory in one transaction.
// Nothing is stored if any part fails.
func (s *SQLiteDB) SaveRecord(ctx context.Context, run *Run, cells []Cell, points []TrajectoryPoint) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		if err := insertCells(ctx, tx, run.ID, cells); err != nil {
			return fmt.Errorf("save matrix: %w", err)
		}
		if err := insertTrajectory(ctx, tx, run.ID, points); err != nil {
			return fmt.Errorf("save trajectory: %w", err)
		}
		return nil
	})
}

func (s *SQLiteDB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRun(ctx context.Context, ex execer, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	strategies, err := json.Marshal(run.Strategies)
	if err != nil {
		return fmt.Errorf("encode strategies: %w", err)
	}

	query := `INSERT INTO runs (
		id, kind, mode, play_to, sample_size, seed, strategies, config, engine_version, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = ex.ExecContext(ctx, query,
		run.ID, run.Kind, run.Mode, run.PlayTo, run.SampleSize, run.Seed,
		string(strategies), run.Config, run.EngineVersion, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func insertCells(ctx context.Context, ex execer, runID string, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}

	stmt, err := ex.PrepareContext(ctx, `INSERT INTO cells (run_id, row_idx, col_idx, value, wins, losses, draws)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, runID, c.Row, c.Col, c.Value, c.Wins, c.Losses, c.Draws); err != nil {
			return fmt.Errorf("save cell (%d, %d): %w", c.Row, c.Col, err)
		}
	}
	return nil
}

func insertTrajectory(ctx context.Context, ex execer, runID string, points []TrajectoryPoint) error {
	if len(points) == 0 {
		return nil
	}

	stmt, err := ex.PrepareContext(ctx, "INSERT INTO trajectory (run_id, step, time, shares) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		shares, err := json.Marshal(p.Shares)
		if err != nil {
			return fmt.Errorf("encode shares: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, p.Step, p.Time, string(shares)); err != nil {
			return fmt.Errorf("save step %d: %w", p.Step, err)
		}
	}
	return nil
}

const runColumns = `id, kind, mode, play_to, sample_size, seed, strategies, config, engine_version, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var strategies string
	var config sql.NullString
	err := row.Scan(
		&run.ID, &run.Kind, &run.Mode, &run.PlayTo, &run.SampleSize, &run.Seed,
		&strategies, &config, &run.EngineVersion, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if config.Valid {
		run.Config = config.String
	}
	if err := json.Unmarshal([]byte(strategies), &run.Strategies); err != nil {
		return nil, fmt.Errorf("decode strategies for run %s: %w", run.ID, err)
	}
	return &run, nil
}

// GetRun retrieves a run by ID
func (s *SQLiteDB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first with pagination.
func (s *SQLiteDB) ListRuns(ctx context.Context, limit, offset int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetCells retrieves a run's matrix entries in row-major order.
func (s *SQLiteDB) GetCells(ctx context.Context, runID string) ([]Cell, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT row_idx, col_idx, value, wins, losses, draws
		FROM cells WHERE run_id = ? ORDER BY row_idx, col_idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []Cell
	for rows.Next() {
		var c Cell
		if err := rows.Scan(&c.Row, &c.Col, &c.Value, &c.Wins, &c.Losses, &c.Draws); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// GetTrajectory retrieves a run's replicator timepoints in order.
func (s *SQLiteDB) GetTrajectory(ctx context.Context, runID string) ([]TrajectoryPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT step, time, shares
		FROM trajectory WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TrajectoryPoint
	for rows.Next() {
		var p TrajectoryPoint
		var shares string
		if err := rows.Scan(&p.Step, &p.Time, &shares); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(shares), &p.Shares); err != nil {
			return nil, fmt.Errorf("decode shares at step %d: %w", p.Step, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
