package file_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/adapters/file"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

func sampleSnapshot(frame int) ports.Snapshot {
	return ports.Snapshot{
		SimulationID: "sim-1",
		Frame:        frame,
		Variables: map[string]domain.VariableState{
			"trust": {VariableID: "trust", Value: float64(75), LastModifiedFrame: frame},
		},
		Progress: map[string][]domain.SpoolProgress{
			"a1": {{SpoolID: "intro", Status: domain.SpoolActive, CurrentEncounter: "meet"}},
		},
		TakenAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	require.NoError(t, store.Save(ctx, sampleSnapshot(3)))
	require.NoError(t, store.Save(ctx, sampleSnapshot(12)))
	require.NoError(t, store.Save(ctx, sampleSnapshot(7)))

	snap, err := store.Load(ctx, "sim-1", 7)
	require.NoError(t, err)
	assert.Equal(t, float64(75), snap.Variables["trust"].Value)
	assert.Equal(t, "meet", snap.Progress["a1"][0].CurrentEncounter)

	// Numeric order, not lexical.
	frames, err := store.Frames(ctx, "sim-1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7, 12}, frames)
}

func TestStore_Missing(t *testing.T) {
	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	_, err := store.Load(ctx, "sim-1", 1)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	frames, err := store.Frames(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestStore_OverwriteAndDelete(t *testing.T) {
	ctx := t.Context()
	store := file.NewStore(t.TempDir())

	require.NoError(t, store.Save(ctx, sampleSnapshot(1)))
	updated := sampleSnapshot(1)
	updated.Variables["trust"] = domain.VariableState{VariableID: "trust", Value: float64(10)}
	require.NoError(t, store.Save(ctx, updated))

	snap, err := store.Load(ctx, "sim-1", 1)
	require.NoError(t, err)
	assert.Equal(t, float64(10), snap.Variables["trust"].Value)

	require.NoError(t, store.Delete(ctx, "sim-1"))
	_, err = store.Load(ctx, "sim-1", 1)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestStore_RejectsEmptySimulationID(t *testing.T) {
	store := file.NewStore(t.TempDir())
	err := store.Save(t.Context(), ports.Snapshot{Frame: 1})
	assert.Error(t, err)
}
