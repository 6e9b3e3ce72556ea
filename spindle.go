package spindle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spoolworks/spindle/internal/logging"
	"github.com/spoolworks/spindle/internal/sim"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
	"github.com/spoolworks/spindle/pkg/schema"
)

// Simulation is the high-level entry point for running one storyworld. It
// wraps the internal frame engine and exposes a simplified API: lifecycle
// control, frame execution, per-agent views, and session export.
type Simulation struct {
	rt *sim.Engine

	logger           *slog.Logger
	sink             ports.EventSink
	snapshots        ports.SnapshotStore
	clock            func() time.Time
	decisionTimeout  time.Duration
	maxFrames        int
	snapshotInterval int
	id               string
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets a structured logger for the simulation.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulation) { s.logger = logger }
}

// WithEventSink routes every emitted SimulationEvent to the sink.
func WithEventSink(sink ports.EventSink) Option {
	return func(s *Simulation) { s.sink = sink }
}

// WithSnapshotStore enables periodic world snapshots.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(s *Simulation) { s.snapshots = store }
}

// WithDecisionTimeout bounds each per-agent decision callback.
func WithDecisionTimeout(d time.Duration) Option {
	return func(s *Simulation) { s.decisionTimeout = d }
}

// WithMaxFrames overrides the storyworld's configured frame budget.
func WithMaxFrames(n int) Option {
	return func(s *Simulation) { s.maxFrames = n }
}

// WithSnapshotInterval overrides the storyworld's snapshot cadence.
func WithSnapshotInterval(n int) Option {
	return func(s *Simulation) { s.snapshotInterval = n }
}

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Simulation) { s.clock = clock }
}

// WithID pins the simulation id instead of generating one.
func WithID(id string) Option {
	return func(s *Simulation) { s.id = id }
}

// New creates a Simulation over a validated storyworld with the given agent
// slots (declaration order is execution order) and decision callback.
func New(sw *domain.Storyworld, agents []string, decider ports.AgentDecider, opts ...Option) (*Simulation, error) {
	if sw == nil {
		return nil, fmt.Errorf("storyworld is required")
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("at least one agent is required")
	}

	s := &Simulation{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	rtOpts := []sim.EngineOption{
		sim.WithLogger(s.logger.With("storyworld", sw.ID)),
	}
	if s.sink != nil {
		rtOpts = append(rtOpts, sim.WithEventSink(s.sink))
	}
	if s.snapshots != nil {
		rtOpts = append(rtOpts, sim.WithSnapshotStore(s.snapshots))
	}
	if s.clock != nil {
		rtOpts = append(rtOpts, sim.WithClock(s.clock))
	}
	if s.decisionTimeout > 0 {
		rtOpts = append(rtOpts, sim.WithDecisionTimeout(s.decisionTimeout))
	}
	if s.maxFrames > 0 {
		rtOpts = append(rtOpts, sim.WithMaxFrames(s.maxFrames))
	}
	if s.snapshotInterval > 0 {
		rtOpts = append(rtOpts, sim.WithSnapshotInterval(s.snapshotInterval))
	}
	if s.id != "" {
		rtOpts = append(rtOpts, sim.WithID(s.id))
	}

	s.rt = sim.NewEngine(sw, agents, decider, rtOpts...)
	return s, nil
}

// LoadStoryworld reads and validates a storyworld document from disk.
func LoadStoryworld(path string) (*domain.Storyworld, error) {
	return schema.LoadFile(path)
}

// ID returns the simulation id.
func (s *Simulation) ID() string { return s.rt.ID() }

// Status returns the simulation lifecycle status.
func (s *Simulation) Status() domain.SimulationStatus { return s.rt.Status() }

// Frame returns the current frame index.
func (s *Simulation) Frame() int { return s.rt.Frame() }

// Agents returns the agent ids in declaration order.
func (s *Simulation) Agents() []string { return s.rt.Agents() }

// Start transitions the simulation from INITIALIZING to RUNNING.
func (s *Simulation) Start(ctx context.Context) error { return s.rt.Start(ctx) }

// Pause suspends frame execution.
func (s *Simulation) Pause(ctx context.Context) error { return s.rt.Pause(ctx) }

// Resume continues a paused simulation.
func (s *Simulation) Resume(ctx context.Context) error { return s.rt.Resume(ctx) }

// Abort terminally stops the simulation.
func (s *Simulation) Abort(ctx context.Context) error { return s.rt.Abort(ctx) }

// ExecuteFrame runs one observe/act/resolve/transition cycle.
func (s *Simulation) ExecuteFrame(ctx context.Context) error { return s.rt.ExecuteFrame(ctx) }

// Run executes frames until the simulation leaves RUNNING or the context
// is canceled.
func (s *Simulation) Run(ctx context.Context) error {
	for s.rt.Status() == domain.StatusRunning {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.rt.ExecuteFrame(ctx); err != nil {
			return err
		}
	}
	return nil
}

// View builds the epistemically isolated projection for one agent at the
// current frame.
func (s *Simulation) View(agentID string) (domain.AgentView, error) {
	return s.rt.View(agentID)
}

// EnterSpool places an agent at a spool's entry encounter, subject to the
// spool's entry gate and re-entry policy.
func (s *Simulation) EnterSpool(ctx context.Context, agentID, spoolID string) error {
	return s.rt.EnterSpool(ctx, agentID, spoolID)
}

// ApplyMutation writes a variable directly, bypassing choice resolution.
// Intended for host tooling and test harnesses; regular state changes flow
// through choices.
func (s *Simulation) ApplyMutation(m domain.VariableMutation, actorID string) error {
	return s.rt.World().ApplyMutation(m, actorID)
}

// Variable reads the current state of one variable.
func (s *Simulation) Variable(id string) (domain.VariableState, bool) {
	return s.rt.World().Variable(id)
}

// SessionOutcomes exports one summary per agent. Pull-based: the consumer
// decides persistence format and cadence.
func (s *Simulation) SessionOutcomes() []domain.SessionOutcome {
	return s.rt.SessionOutcomes()
}
