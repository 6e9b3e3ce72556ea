package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// Store implements ports.SnapshotStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[int]ports.Snapshot // simulation id -> frame -> snapshot
}

// NewStore creates a new in-memory snapshot store.
func NewStore() *Store {
	return &Store{data: make(map[string]map[int]ports.Snapshot)}
}

// Save persists a snapshot, replacing any capture for the same frame.
func (s *Store) Save(ctx context.Context, snap ports.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames, ok := s.data[snap.SimulationID]
	if !ok {
		frames = make(map[int]ports.Snapshot)
		s.data[snap.SimulationID] = frames
	}
	frames[snap.Frame] = cloneSnapshot(snap)
	return nil
}

// Load retrieves a snapshot by simulation and frame.
func (s *Store) Load(ctx context.Context, simulationID string, frame int) (*ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.data[simulationID][frame]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	out := cloneSnapshot(snap)
	return &out, nil
}

// Frames lists captured frames for a simulation, ascending.
func (s *Store) Frames(ctx context.Context, simulationID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frames := make([]int, 0, len(s.data[simulationID]))
	for f := range s.data[simulationID] {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames, nil
}

// Delete removes all snapshots for a simulation.
func (s *Store) Delete(ctx context.Context, simulationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, simulationID)
	return nil
}

// cloneSnapshot copies the maps so callers can't mutate stored state
// through retained references.
func cloneSnapshot(snap ports.Snapshot) ports.Snapshot {
	out := snap
	out.Variables = make(map[string]domain.VariableState, len(snap.Variables))
	for k, v := range snap.Variables {
		out.Variables[k] = v
	}
	out.Progress = make(map[string][]domain.SpoolProgress, len(snap.Progress))
	for k, v := range snap.Progress {
		out.Progress[k] = domain.CloneProgressList(v)
	}
	return out
}
