package observability_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/adapters/memory"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/observability"
)

func TestInstrumentedSink_CountsEvents(t *testing.T) {
	ctx := t.Context()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	inner := memory.NewSink()
	sink := observability.NewInstrumentedSink(metrics, inner)

	events := []domain.SimulationEvent{
		{Type: domain.EventChoiceMade},
		{Type: domain.EventChoiceMade},
		{Type: domain.EventFrameAdvanced, Payload: map[string]any{"duration_ms": float64(12)}},
		{Type: domain.EventAgentTimeout},
		{Type: domain.EventAgentError},
	}
	for _, ev := range events {
		require.NoError(t, sink.Emit(ctx, ev))
	}

	expected := `
		# HELP spindle_frames_total Frames executed across all simulations.
		# TYPE spindle_frames_total counter
		spindle_frames_total 1
		# HELP spindle_choices_total Choices resolved across all simulations.
		# TYPE spindle_choices_total counter
		spindle_choices_total 2
		# HELP spindle_agent_failures_total Agent decision failures, split by timeout vs error.
		# TYPE spindle_agent_failures_total counter
		spindle_agent_failures_total{kind="error"} 1
		spindle_agent_failures_total{kind="timeout"} 1
		# HELP spindle_events_total Simulation events emitted, by type.
		# TYPE spindle_events_total counter
		spindle_events_total{type="AGENT_ERROR"} 1
		spindle_events_total{type="AGENT_TIMEOUT"} 1
		spindle_events_total{type="CHOICE_MADE"} 2
		spindle_events_total{type="FRAME_ADVANCED"} 1
	`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"spindle_frames_total",
		"spindle_choices_total",
		"spindle_agent_failures_total",
		"spindle_events_total",
	))

	// The 12ms frame lands in the histogram.
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "spindle_frame_duration_seconds" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		hist := mf.GetMetric()[0].GetHistogram()
		assert.Equal(t, uint64(1), hist.GetSampleCount())
		assert.InDelta(t, 0.012, hist.GetSampleSum(), 1e-9)
	}

	// All events still reach the wrapped sink.
	assert.Equal(t, len(events), inner.Len())
}

func TestInstrumentedSink_NilNext(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := observability.NewInstrumentedSink(observability.NewMetrics(reg), nil)

	require.NoError(t, sink.Emit(t.Context(), domain.SimulationEvent{Type: domain.EventChoiceMade}))

	expected := `
		# HELP spindle_choices_total Choices resolved across all simulations.
		# TYPE spindle_choices_total counter
		spindle_choices_total 1
	`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "spindle_choices_total"))
}
