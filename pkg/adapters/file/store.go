package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// Store implements ports.SnapshotStore on the local filesystem. Each
// snapshot is one JSON file at <base>/<simulationID>/<frame>.json.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath. If basePath is empty it
// defaults to ".spindle/snapshots".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".spindle", "snapshots")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) dir(simulationID string) string {
	return filepath.Join(s.BasePath, simulationID)
}

func (s *Store) path(simulationID string, frame int) string {
	return filepath.Join(s.dir(simulationID), fmt.Sprintf("%d.json", frame))
}

// Save writes the snapshot atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, snap ports.Snapshot) error {
	if snap.SimulationID == "" {
		return fmt.Errorf("snapshot simulation id cannot be empty")
	}
	dir := s.dir(snap.SimulationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Same directory as the destination so the rename stays on one
	// filesystem.
	tmp, err := os.CreateTemp(dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(snap.SimulationID, snap.Frame)); err != nil {
		return fmt.Errorf("failed to rename snapshot into place: %w", err)
	}
	return nil
}

// Load reads one snapshot file.
func (s *Store) Load(ctx context.Context, simulationID string, frame int) (*ports.Snapshot, error) {
	data, err := os.ReadFile(s.path(simulationID, frame))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap ports.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Frames lists captured frame numbers, ascending.
func (s *Store) Frames(ctx context.Context, simulationID string) ([]int, error) {
	entries, err := os.ReadDir(s.dir(simulationID))
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	var frames []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		frame, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	sort.Ints(frames)
	return frames, nil
}

// Delete removes all snapshots for a simulation.
func (s *Store) Delete(ctx context.Context, simulationID string) error {
	if err := os.RemoveAll(s.dir(simulationID)); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
