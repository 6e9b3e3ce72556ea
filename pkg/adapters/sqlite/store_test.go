package sqlite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/adapters/sqlite"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Events(t *testing.T) {
	ctx := t.Context()
	store := openTestStore(t)

	events := []domain.SimulationEvent{
		{
			SimulationID: "sim-1",
			Frame:        1,
			Stage:        domain.StageResolution,
			Category:     domain.CategoryNarrative,
			Type:         domain.EventChoiceMade,
			Actor:        "a1",
			Payload:      map[string]any{"choice_id": "wave"},
			Timestamp:    time.Unix(1700000000, 0),
		},
		{
			SimulationID: "sim-1",
			Frame:        1,
			Stage:        domain.StageTransition,
			Category:     domain.CategorySystem,
			Type:         domain.EventFrameAdvanced,
			Timestamp:    time.Unix(1700000001, 0),
		},
		{
			SimulationID: "sim-2",
			Frame:        1,
			Stage:        domain.StageSystem,
			Category:     domain.CategorySystem,
			Type:         domain.EventSimulationStarted,
			Timestamp:    time.Unix(1700000002, 0),
		},
	}
	for _, ev := range events {
		require.NoError(t, store.Emit(ctx, ev))
	}

	got, err := store.Events(ctx, "sim-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventChoiceMade, got[0].Type)
	assert.Equal(t, "a1", got[0].Actor)
	assert.Equal(t, "wave", got[0].Payload["choice_id"])
	assert.Nil(t, got[1].Payload)
	assert.Equal(t, domain.EventFrameAdvanced, got[1].Type)
}

func TestStore_Snapshots(t *testing.T) {
	ctx := t.Context()
	store := openTestStore(t)

	snap := ports.Snapshot{
		SimulationID: "sim-1",
		Frame:        4,
		Variables: map[string]domain.VariableState{
			"trust": {VariableID: "trust", Value: float64(60), LastModifiedFrame: 3},
		},
		Progress: map[string][]domain.SpoolProgress{
			"a1": {{SpoolID: "intro", Status: domain.SpoolActive, CurrentEncounter: "meet"}},
		},
		TakenAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, store.Save(ctx, snap))
	require.NoError(t, store.Save(ctx, ports.Snapshot{SimulationID: "sim-1", Frame: 8}))

	loaded, err := store.Load(ctx, "sim-1", 4)
	require.NoError(t, err)
	assert.Equal(t, float64(60), loaded.Variables["trust"].Value)
	assert.Equal(t, "meet", loaded.Progress["a1"][0].CurrentEncounter)

	frames, err := store.Frames(ctx, "sim-1")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 8}, frames)

	// Saving the same frame again replaces the row.
	snap.Variables["trust"] = domain.VariableState{VariableID: "trust", Value: float64(90)}
	require.NoError(t, store.Save(ctx, snap))
	loaded, err = store.Load(ctx, "sim-1", 4)
	require.NoError(t, err)
	assert.Equal(t, float64(90), loaded.Variables["trust"].Value)

	_, err = store.Load(ctx, "sim-1", 99)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	require.NoError(t, store.Delete(ctx, "sim-1"))
	frames, err = store.Frames(ctx, "sim-1")
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestStore_Outcomes(t *testing.T) {
	ctx := t.Context()
	store := openTestStore(t)

	outcomes := []domain.SessionOutcome{
		{
			SimulationID:    "sim-1",
			AgentID:         "a1",
			StartFrame:      1,
			EndFrame:        6,
			Choices:         []domain.ChoiceRecord{{Frame: 2, EncounterID: "meet", ChoiceID: "wave", AvailableChoices: []string{"wave", "leave"}, ChoiceIndex: 0}},
			SpoolsEntered:   []string{"intro"},
			SpoolsCompleted: []string{"intro"},
			EndingsReached:  []string{"farewell"},
			FinalVariables:  map[string]any{"trust": float64(80)},
		},
		{SimulationID: "sim-1", AgentID: "a2", StartFrame: 1, EndFrame: 6},
	}
	require.NoError(t, store.SaveOutcomes(ctx, outcomes))

	got, err := store.Outcomes(ctx, "sim-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].AgentID)
	assert.Equal(t, []string{"farewell"}, got[0].EndingsReached)
	assert.Equal(t, float64(80), got[0].FinalVariables["trust"])

	// Export is idempotent: saving again upserts rather than duplicating.
	outcomes[0].EndFrame = 9
	require.NoError(t, store.SaveOutcomes(ctx, outcomes))
	got, err = store.Outcomes(ctx, "sim-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].EndFrame)
}
