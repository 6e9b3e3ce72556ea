package ports

import (
	"context"
	"time"

	"github.com/spoolworks/spindle/pkg/domain"
)

// Snapshot is a point-in-time capture of one world state: variable states
// plus per-agent spool progress, keyed by simulation id and frame.
type Snapshot struct {
	SimulationID string                          `json:"simulation_id"`
	Frame        int                             `json:"frame"`
	Variables    map[string]domain.VariableState `json:"variables"`
	Progress     map[string][]domain.SpoolProgress `json:"progress"`
	TakenAt      time.Time                       `json:"taken_at"`
}

// SnapshotStore persists periodic world snapshots. The persistence
// collaborator only ever reads exported snapshots; it never mutates
// engine-owned state.
type SnapshotStore interface {
	// Save persists a snapshot, overwriting any prior capture for the same
	// simulation and frame.
	Save(ctx context.Context, snap Snapshot) error

	// Load retrieves the snapshot for a simulation at a frame.
	// Returns domain.ErrSnapshotNotFound if absent.
	Load(ctx context.Context, simulationID string, frame int) (*Snapshot, error)

	// Frames lists captured frame numbers for a simulation, ascending.
	Frames(ctx context.Context, simulationID string) ([]int, error)

	// Delete removes all snapshots for a simulation.
	Delete(ctx context.Context, simulationID string) error
}
