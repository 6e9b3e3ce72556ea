// Package strategy layers turn/phase/action-order bookkeeping above the
// frame loop. The overlay only reads frame numbers from the event stream
// and emits its own events; it never reaches into world state, so core
// semantics are unchanged whether or not it is installed.
package strategy

import (
	"context"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// Overlay is an EventSink middleware that tracks turns and phases. Install
// it between the engine and the real sink; it forwards everything it sees
// and injects TURN_STARTED / PHASE_CHANGED events at turn boundaries.
type Overlay struct {
	next ports.EventSink

	agents        []string
	phases        []string
	framesPerTurn int

	turn  int
	phase string
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithPhases sets the phase cycle (one phase advance per turn).
func WithPhases(phases ...string) Option {
	return func(o *Overlay) {
		if len(phases) > 0 {
			o.phases = phases
		}
	}
}

// WithFramesPerTurn sets how many frames make up one turn (default 1).
func WithFramesPerTurn(n int) Option {
	return func(o *Overlay) {
		if n > 0 {
			o.framesPerTurn = n
		}
	}
}

// New creates an overlay for the given agents, forwarding to next.
func New(next ports.EventSink, agents []string, opts ...Option) *Overlay {
	o := &Overlay{
		next:          next,
		agents:        append([]string(nil), agents...),
		phases:        []string{"main"},
		framesPerTurn: 1,
		turn:          -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Turn returns the current turn number (-1 before the first frame).
func (o *Overlay) Turn() int { return o.turn }

// Phase returns the current phase name.
func (o *Overlay) Phase() string { return o.phase }

// ActionOrder returns the agent order for a turn: declaration order rotated
// by the turn number, so initiative moves one slot each turn.
func (o *Overlay) ActionOrder(turn int) []string {
	n := len(o.agents)
	if n == 0 {
		return nil
	}
	order := make([]string, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, o.agents[(turn+i)%n])
	}
	return order
}

// Emit forwards ev and, when a FRAME_ADVANCED event crosses a turn
// boundary, emits the overlay's own strategy events downstream.
func (o *Overlay) Emit(ctx context.Context, ev domain.SimulationEvent) error {
	if err := o.forward(ctx, ev); err != nil {
		return err
	}
	if ev.Type != domain.EventFrameAdvanced {
		return nil
	}

	frame, ok := ev.Payload["frame"].(int)
	if !ok {
		if f, isFloat := ev.Payload["frame"].(float64); isFloat {
			frame = int(f)
		} else {
			return nil
		}
	}

	turn := frame / o.framesPerTurn
	if turn == o.turn {
		return nil
	}
	o.turn = turn

	order := o.ActionOrder(turn)
	if err := o.forward(ctx, domain.SimulationEvent{
		SimulationID: ev.SimulationID,
		Frame:        ev.Frame,
		Stage:        domain.StageTransition,
		Category:     domain.CategoryStrategy,
		Type:         domain.EventTurnStarted,
		Timestamp:    ev.Timestamp,
		Payload: map[string]any{
			"turn":         turn,
			"action_order": order,
		},
	}); err != nil {
		return err
	}

	phase := o.phases[turn%len(o.phases)]
	if phase == o.phase {
		return nil
	}
	o.phase = phase
	return o.forward(ctx, domain.SimulationEvent{
		SimulationID: ev.SimulationID,
		Frame:        ev.Frame,
		Stage:        domain.StageTransition,
		Category:     domain.CategoryStrategy,
		Type:         domain.EventPhaseChanged,
		Timestamp:    ev.Timestamp,
		Payload: map[string]any{
			"turn":  turn,
			"phase": phase,
		},
	})
}

func (o *Overlay) forward(ctx context.Context, ev domain.SimulationEvent) error {
	if o.next == nil {
		return nil
	}
	return o.next.Emit(ctx, ev)
}
