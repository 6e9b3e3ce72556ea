package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/adapters/memory"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/strategy"
)

func frameAdvanced(frame int) domain.SimulationEvent {
	return domain.SimulationEvent{
		SimulationID: "sim-1",
		Frame:        frame,
		Stage:        domain.StageTransition,
		Category:     domain.CategorySystem,
		Type:         domain.EventFrameAdvanced,
		Payload:      map[string]any{"frame": frame},
	}
}

func TestOverlay_TurnBoundaries(t *testing.T) {
	ctx := t.Context()
	sink := memory.NewSink()
	overlay := strategy.New(sink, []string{"a1", "a2"}, strategy.WithFramesPerTurn(2))

	assert.Equal(t, -1, overlay.Turn())

	// Frames 0 and 1 are turn 0; frame 2 opens turn 1.
	for frame := 0; frame <= 2; frame++ {
		require.NoError(t, overlay.Emit(ctx, frameAdvanced(frame)))
	}
	assert.Equal(t, 1, overlay.Turn())

	turns := sink.EventsOfType(domain.EventTurnStarted)
	require.Len(t, turns, 2)
	assert.Equal(t, 0, turns[0].Payload["turn"])
	assert.Equal(t, 1, turns[1].Payload["turn"])
}

func TestOverlay_ActionOrderRotates(t *testing.T) {
	overlay := strategy.New(nil, []string{"a1", "a2", "a3"})

	assert.Equal(t, []string{"a1", "a2", "a3"}, overlay.ActionOrder(0))
	assert.Equal(t, []string{"a2", "a3", "a1"}, overlay.ActionOrder(1))
	assert.Equal(t, []string{"a3", "a1", "a2"}, overlay.ActionOrder(2))
	assert.Equal(t, []string{"a1", "a2", "a3"}, overlay.ActionOrder(3))
}

func TestOverlay_PhaseCycle(t *testing.T) {
	ctx := t.Context()
	sink := memory.NewSink()
	overlay := strategy.New(sink, []string{"a1"}, strategy.WithPhases("dawn", "dusk"))

	for frame := 0; frame <= 3; frame++ {
		require.NoError(t, overlay.Emit(ctx, frameAdvanced(frame)))
	}

	phases := sink.EventsOfType(domain.EventPhaseChanged)
	require.Len(t, phases, 4)
	assert.Equal(t, "dawn", phases[0].Payload["phase"])
	assert.Equal(t, "dusk", phases[1].Payload["phase"])
	assert.Equal(t, "dusk", overlay.Phase())
}

func TestOverlay_ForwardsEverything(t *testing.T) {
	ctx := t.Context()
	sink := memory.NewSink()
	overlay := strategy.New(sink, []string{"a1"})

	require.NoError(t, overlay.Emit(ctx, domain.SimulationEvent{Type: domain.EventChoiceMade}))
	require.NoError(t, overlay.Emit(ctx, frameAdvanced(0)))

	// Original events pass through untouched; strategy events are added.
	assert.Len(t, sink.EventsOfType(domain.EventChoiceMade), 1)
	assert.Len(t, sink.EventsOfType(domain.EventFrameAdvanced), 1)
	assert.Len(t, sink.EventsOfType(domain.EventTurnStarted), 1)
}

func TestOverlay_IgnoresFramelessPayloads(t *testing.T) {
	ctx := t.Context()
	sink := memory.NewSink()
	overlay := strategy.New(sink, []string{"a1"})

	require.NoError(t, overlay.Emit(ctx, domain.SimulationEvent{Type: domain.EventFrameAdvanced}))
	assert.Equal(t, -1, overlay.Turn())
	assert.Empty(t, sink.EventsOfType(domain.EventTurnStarted))
}
