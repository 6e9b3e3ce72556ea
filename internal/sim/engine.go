package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spoolworks/spindle/internal/logging"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

const (
	defaultMaxFrames       = 100
	defaultDecisionTimeout = 30 * time.Second

	// recentWindow bounds the rolling event window views are built from.
	recentWindow = 64
)

// Engine drives the frame lifecycle (observe, act, resolve, transition) for
// one loaded storyworld. It exclusively owns the world state and the event
// log; collaborators only read exported snapshots and appended events.
type Engine struct {
	id         string
	storyworld *domain.Storyworld
	world      *WorldState
	evaluator  *Evaluator
	views      *ViewBuilder

	agents  []string
	decider ports.AgentDecider

	sink      ports.EventSink
	snapshots ports.SnapshotStore
	logger    *slog.Logger
	clock     func() time.Time

	status           domain.SimulationStatus
	maxFrames        int
	decisionTimeout  time.Duration
	snapshotInterval int

	ledgers     map[string][]domain.ChoiceRecord
	startFrames map[string]int
	recent      []domain.SimulationEvent
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEventSink routes emitted events to the given sink.
func WithEventSink(sink ports.EventSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithSnapshotStore enables periodic snapshot capture into the store.
func WithSnapshotStore(store ports.SnapshotStore) EngineOption {
	return func(e *Engine) { e.snapshots = store }
}

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithDecisionTimeout bounds each per-agent decision callback.
func WithDecisionTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.decisionTimeout = d
		}
	}
}

// WithMaxFrames overrides the storyworld's frame budget.
func WithMaxFrames(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxFrames = n
		}
	}
}

// WithSnapshotInterval overrides the storyworld's snapshot cadence.
func WithSnapshotInterval(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.snapshotInterval = n
		}
	}
}

// WithID pins the simulation id (tests, resumed runs).
func WithID(id string) EngineOption {
	return func(e *Engine) {
		if id != "" {
			e.id = id
		}
	}
}

// NewEngine creates a simulation over one storyworld. Agent order is
// declaration order: observation, collection, and resolution all follow it,
// which keeps choice-sequence logs reproducible.
func NewEngine(sw *domain.Storyworld, agents []string, decider ports.AgentDecider, opts ...EngineOption) *Engine {
	e := &Engine{
		id:         uuid.NewString(),
		storyworld: sw,
		world:      NewWorldState(sw),
		agents:     append([]string(nil), agents...),
		decider:    decider,
		logger:     logging.NewNop(),
		clock:      time.Now,
		status:     domain.StatusInitializing,

		maxFrames:        defaultMaxFrames,
		decisionTimeout:  defaultDecisionTimeout,
		snapshotInterval: sw.Config.SnapshotInterval,

		ledgers:     make(map[string][]domain.ChoiceRecord),
		startFrames: make(map[string]int),
	}
	e.evaluator = NewEvaluator(sw)
	e.views = NewViewBuilder(e.evaluator)

	if sw.Config.MaxFrames > 0 {
		e.maxFrames = sw.Config.MaxFrames
	}
	if sw.Config.DecisionTimeoutMS > 0 {
		e.decisionTimeout = time.Duration(sw.Config.DecisionTimeoutMS) * time.Millisecond
	}

	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("simulation", e.id)
	return e
}

// ID returns the simulation id.
func (e *Engine) ID() string { return e.id }

// Status returns the current lifecycle status.
func (e *Engine) Status() domain.SimulationStatus { return e.status }

// Frame returns the current frame index.
func (e *Engine) Frame() int { return e.world.Frame() }

// World exposes the engine-owned world state for test harnesses and the
// root facade. External collaborators must not retain it.
func (e *Engine) World() *WorldState { return e.world }

// Agents returns the agent ids in declaration order.
func (e *Engine) Agents() []string {
	return append([]string(nil), e.agents...)
}

// Start transitions INITIALIZING -> RUNNING. Any other origin status fails
// with *domain.InvalidStateTransitionError.
func (e *Engine) Start(ctx context.Context) error {
	if e.status != domain.StatusInitializing {
		return &domain.InvalidStateTransitionError{Op: "start", From: e.status}
	}
	e.status = domain.StatusRunning
	for _, agent := range e.agents {
		e.startFrames[agent] = e.world.Frame()
	}
	e.emit(ctx, domain.SimulationEvent{
		Stage:    domain.StageSystem,
		Category: domain.CategorySystem,
		Type:     domain.EventSimulationStarted,
		Payload:  map[string]any{"storyworld": e.storyworld.ID, "agents": len(e.agents)},
	})
	e.logger.Info("simulation started", "storyworld", e.storyworld.ID, "agents", len(e.agents))
	return nil
}

// Pause transitions RUNNING -> PAUSED.
func (e *Engine) Pause(ctx context.Context) error {
	if e.status != domain.StatusRunning {
		return &domain.InvalidStateTransitionError{Op: "pause", From: e.status}
	}
	e.status = domain.StatusPaused
	e.emit(ctx, domain.SimulationEvent{
		Stage: domain.StageSystem, Category: domain.CategorySystem, Type: domain.EventSimulationPaused,
	})
	return nil
}

// Resume transitions PAUSED -> RUNNING.
func (e *Engine) Resume(ctx context.Context) error {
	if e.status != domain.StatusPaused {
		return &domain.InvalidStateTransitionError{Op: "resume", From: e.status}
	}
	e.status = domain.StatusRunning
	e.emit(ctx, domain.SimulationEvent{
		Stage: domain.StageSystem, Category: domain.CategorySystem, Type: domain.EventSimulationResumed,
	})
	return nil
}

// Abort transitions RUNNING or PAUSED -> ABORTED.
func (e *Engine) Abort(ctx context.Context) error {
	if e.status != domain.StatusRunning && e.status != domain.StatusPaused {
		return &domain.InvalidStateTransitionError{Op: "abort", From: e.status}
	}
	e.status = domain.StatusAborted
	e.emit(ctx, domain.SimulationEvent{
		Stage: domain.StageSystem, Category: domain.CategorySystem, Type: domain.EventSimulationAborted,
	})
	return nil
}

// View builds the current epistemically isolated projection for one agent.
func (e *Engine) View(agentID string) (domain.AgentView, error) {
	return e.views.Build(e.id, agentID, e.world, e.recent)
}

// ExecuteFrame runs one full frame: observation, action collection,
// resolution, transition, completion and snapshot checks. Only valid while
// RUNNING. Per-agent failures are logged as events and never abort the
// frame.
func (e *Engine) ExecuteFrame(ctx context.Context) error {
	if e.status != domain.StatusRunning {
		return &domain.InvalidStateTransitionError{Op: "executeFrame", From: e.status}
	}
	frameStart := e.clock()

	// 1. Observation: one view per agent. The delivery event carries no
	// view contents so the log cannot leak state across agents.
	views := make(map[string]domain.AgentView, len(e.agents))
	for _, agent := range e.agents {
		view, err := e.View(agent)
		if err != nil {
			e.logger.Warn("view build failed", "agent", agent, "err", err)
			e.emit(ctx, domain.SimulationEvent{
				Stage:    domain.StageObservation,
				Category: domain.CategorySystem,
				Type:     domain.EventAgentError,
				Actor:    agent,
				Payload:  map[string]any{"reason": err.Error()},
			})
			continue
		}
		views[agent] = view
		e.emit(ctx, domain.SimulationEvent{
			Stage:    domain.StageObservation,
			Category: domain.CategoryAgent,
			Type:     domain.EventViewDelivered,
			Actor:    agent,
		})
	}

	// 2. Action collection: sequential, bounded per agent. A timeout or
	// error skips the agent for this frame only.
	actions := make(map[string]*ports.AgentAction, len(e.agents))
	for _, agent := range e.agents {
		view, ok := views[agent]
		if !ok {
			continue
		}
		action, err := e.collectAction(ctx, agent, view)
		if err != nil {
			evType := domain.EventAgentError
			if err == context.DeadlineExceeded {
				evType = domain.EventAgentTimeout
			}
			e.emit(ctx, domain.SimulationEvent{
				Stage:    domain.StageAction,
				Category: domain.CategorySystem,
				Type:     evType,
				Actor:    agent,
				Payload:  map[string]any{"reason": err.Error()},
			})
			continue
		}
		if action != nil {
			actions[agent] = action
		}
	}

	// 3. Resolution: fixed agent declaration order so the same decisions
	// always produce the same event and mutation sequence.
	for _, agent := range e.agents {
		action, ok := actions[agent]
		if !ok {
			continue
		}
		if action.ChoiceID != "" {
			e.resolveChoice(ctx, agent, action.ChoiceID)
		}
		if action.SpoolID != "" {
			if err := e.enterSpool(ctx, agent, action.SpoolID); err != nil {
				e.logger.Debug("spool entry rejected", "agent", agent, "spool", action.SpoolID, "err", err)
			}
		}
		if action.Message != "" {
			e.emit(ctx, domain.SimulationEvent{
				Stage:    domain.StageResolution,
				Category: domain.CategoryAgent,
				Type:     domain.EventCommunication,
				Actor:    agent,
				Payload:  map[string]any{"message": action.Message},
			})
		}
	}

	// 4. Transition.
	e.world.AdvanceFrame()
	frame := e.world.Frame()
	e.emit(ctx, domain.SimulationEvent{
		Stage:    domain.StageTransition,
		Category: domain.CategorySystem,
		Type:     domain.EventFrameAdvanced,
		Payload: map[string]any{
			"frame":       frame,
			"duration_ms": float64(e.clock().Sub(frameStart)) / float64(time.Millisecond),
		},
	})

	// 5. Completion check.
	if frame >= e.maxFrames {
		e.status = domain.StatusCompleted
		e.emit(ctx, domain.SimulationEvent{
			Stage: domain.StageSystem, Category: domain.CategorySystem, Type: domain.EventSimulationDone,
			Payload: map[string]any{"frame": frame},
		})
		e.logger.Info("simulation completed", "frame", frame)
	}

	// 6. Snapshot check.
	if e.snapshots != nil && e.snapshotInterval > 0 && frame%e.snapshotInterval == 0 {
		e.captureSnapshot(ctx, frame)
	}
	return nil
}

// collectAction invokes the decision callback bounded by the per-agent
// timeout. The callback runs in its own goroutine so a decider that ignores
// context cancellation cannot stall the frame loop.
func (e *Engine) collectAction(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	if e.decider == nil {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.decisionTimeout)
	defer cancel()

	type result struct {
		action *ports.AgentAction
		err    error
	}
	done := make(chan result, 1)
	go func() {
		action, err := e.decider.Decide(callCtx, agentID, view)
		done <- result{action, err}
	}()

	select {
	case r := <-done:
		return r.action, r.err
	case <-callCtx.Done():
		return nil, context.DeadlineExceeded
	}
}

// captureSnapshot exports the world to the snapshot store.
func (e *Engine) captureSnapshot(ctx context.Context, frame int) {
	progress := make(map[string][]domain.SpoolProgress)
	for _, agent := range e.world.ProgressAgents() {
		progress[agent] = e.world.AgentSpoolProgress(agent)
	}
	snap := ports.Snapshot{
		SimulationID: e.id,
		Frame:        frame,
		Variables:    e.world.Variables(),
		Progress:     progress,
		TakenAt:      e.clock(),
	}
	if err := e.snapshots.Save(ctx, snap); err != nil {
		e.logger.Warn("snapshot save failed", "frame", frame, "err", err)
		return
	}
	e.emit(ctx, domain.SimulationEvent{
		Stage:    domain.StageSystem,
		Category: domain.CategorySystem,
		Type:     domain.EventSnapshotCaptured,
		Payload:  map[string]any{"frame": frame},
	})
}

// emit stamps, buffers, and forwards one event. Sink failures are logged
// and swallowed: the log must never abort the frame loop.
func (e *Engine) emit(ctx context.Context, ev domain.SimulationEvent) {
	ev.SimulationID = e.id
	ev.Frame = e.world.Frame()
	ev.Timestamp = e.clock()

	e.recent = append(e.recent, ev)
	if len(e.recent) > recentWindow {
		e.recent = e.recent[len(e.recent)-recentWindow:]
	}

	if e.sink == nil {
		return
	}
	if err := e.sink.Emit(ctx, ev); err != nil {
		e.logger.Warn("event sink failed", "type", ev.Type, "err", err)
	}
}
