package ports

import (
	"context"

	"github.com/spoolworks/spindle/pkg/domain"
)

// EventSink receives every emitted SimulationEvent synchronously as it is
// produced. Implementations must not block the frame loop indefinitely;
// the engine logs and continues on sink errors.
type EventSink interface {
	Emit(ctx context.Context, ev domain.SimulationEvent) error
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(ctx context.Context, ev domain.SimulationEvent) error

func (f SinkFunc) Emit(ctx context.Context, ev domain.SimulationEvent) error {
	return f(ctx, ev)
}

// FanOut returns a sink that forwards each event to every given sink in
// order, returning the first error after all sinks have seen the event.
func FanOut(sinks ...EventSink) EventSink {
	return SinkFunc(func(ctx context.Context, ev domain.SimulationEvent) error {
		var first error
		for _, s := range sinks {
			if err := s.Emit(ctx, ev); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
