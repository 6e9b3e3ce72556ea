package memory

import (
	"context"
	"sync"

	"github.com/spoolworks/spindle/pkg/domain"
)

// Sink implements ports.EventSink in memory. Safe for concurrent use.
// Intended for tests and for serving recent events over the HTTP adapter.
type Sink struct {
	mu     sync.RWMutex
	events []domain.SimulationEvent
}

// NewSink creates an empty in-memory event sink.
func NewSink() *Sink {
	return &Sink{}
}

// Emit appends the event.
func (s *Sink) Emit(ctx context.Context, ev domain.SimulationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of everything emitted so far.
func (s *Sink) Events() []domain.SimulationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SimulationEvent, len(s.events))
	copy(out, s.events)
	return out
}

// EventsOfType filters the log by event type.
func (s *Sink) EventsOfType(t domain.EventType) []domain.SimulationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SimulationEvent
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Len reports how many events have been emitted.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
