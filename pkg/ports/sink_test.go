package ports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

func TestFanOut(t *testing.T) {
	var order []string
	record := func(name string) ports.EventSink {
		return ports.SinkFunc(func(context.Context, domain.SimulationEvent) error {
			order = append(order, name)
			return nil
		})
	}
	boom := ports.SinkFunc(func(context.Context, domain.SimulationEvent) error {
		order = append(order, "boom")
		return errors.New("sink down")
	})

	sink := ports.FanOut(record("first"), boom, record("last"))
	err := sink.Emit(t.Context(), domain.SimulationEvent{Type: domain.EventFrameAdvanced})

	// Every sink sees the event even when an earlier one fails.
	require.Error(t, err)
	assert.Equal(t, []string{"first", "boom", "last"}, order)
}
