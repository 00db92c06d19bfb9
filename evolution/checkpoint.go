package evolution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/ecoround/simulation"
)

// CheckpointData is the serialisable result of a tournament run.
type CheckpointData struct {
	// Configuration
	Tournament TournamentConfig       `json:"tournament"`
	Match      simulation.MatchConfig `json:"match"`

	// Results
	Matrix     *InteractionMatrix `json:"matrix"`
	Trajectory *Trajectory        `json:"trajectory,omitempty"`

	// Metadata
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// CheckpointVersion is the current checkpoint format version.
const CheckpointVersion = "1.0"

// NewCheckpoint bundles a tournament's configuration and results.
func NewCheckpoint(t *Tournament, m *InteractionMatrix, traj *Trajectory) *CheckpointData {
	return &CheckpointData{
		Tournament: t.Config,
		Match:      t.Match,
		Matrix:     m,
		Trajectory: traj,
		Timestamp:  time.Now().UTC(),
		Version:    CheckpointVersion,
	}
}

// SaveCheckpoint writes a checkpoint to path atomically.
func SaveCheckpoint(path string, checkpoint *CheckpointData) error {
	if checkpoint == nil || checkpoint.Matrix == nil {
		return fmt.Errorf("no matrix to save")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	// Write to temp file first, then rename
	tempPath := path + ".tmp"
	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to finalize checkpoint: %w", err)
	}

	return nil
}

// LoadCheckpoint reads a checkpoint and validates its matrix.
func LoadCheckpoint(path string) (*CheckpointData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var checkpoint CheckpointData
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	if checkpoint.Matrix == nil {
		return nil, fmt.Errorf("checkpoint %s has no matrix", path)
	}
	if err := checkpoint.Matrix.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}

	return &checkpoint, nil
}
