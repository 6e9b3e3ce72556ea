package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/internal/logging"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// Runner executes a simulation until it leaves RUNNING, optionally
// recording the run into a ports.RunTracker.
type Runner struct {
	tracker ports.RunTracker
	logger  *slog.Logger

	// onFrame, when set, is called after every executed frame.
	onFrame func(frame int)
}

// Option configures a Runner.
type Option func(*Runner)

// WithTracker records the run (params, metrics, outcome artifacts).
func WithTracker(tracker ports.RunTracker) Option {
	return func(r *Runner) { r.tracker = tracker }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFrameHook invokes fn after each executed frame (progress display).
func WithFrameHook(fn func(frame int)) Option {
	return func(r *Runner) { r.onFrame = fn }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the simulation and executes frames until it completes, the
// context is canceled, or a structural error aborts it. The tracker, when
// configured, receives run params up front, per-frame metrics during
// execution, and the session outcomes as a final artifact.
func (r *Runner) Run(ctx context.Context, sim *spindle.Simulation, sw *domain.Storyworld) ([]domain.SessionOutcome, error) {
	if err := sim.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start simulation: %w", err)
	}
	r.logParams(sim, sw)

	runErr := r.loop(ctx, sim)

	outcomes := sim.SessionOutcomes()
	r.logOutcomes(sim, outcomes)

	if r.tracker != nil {
		status := ports.RunFinished
		if runErr != nil {
			status = ports.RunFailed
			if ctx.Err() != nil {
				status = ports.RunKilled
			}
		}
		if err := r.tracker.Close(status); err != nil {
			r.logger.Warn("tracker close failed", "err", err)
		}
	}
	return outcomes, runErr
}

func (r *Runner) loop(ctx context.Context, sim *spindle.Simulation) error {
	for sim.Status() == domain.StatusRunning {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sim.ExecuteFrame(ctx); err != nil {
			return err
		}
		frame := sim.Frame()
		r.logFrameMetrics(sim, frame)
		if r.onFrame != nil {
			r.onFrame(frame)
		}
	}
	return nil
}

func (r *Runner) logParams(sim *spindle.Simulation, sw *domain.Storyworld) {
	if r.tracker == nil {
		return
	}
	params := map[string]string{
		"simulation_id":      sim.ID(),
		"storyworld_id":      sw.ID,
		"storyworld_version": sw.Version,
		"agents":             strconv.Itoa(len(sim.Agents())),
	}
	for name, value := range params {
		if err := r.tracker.LogParam(name, value); err != nil {
			r.logger.Warn("param log failed", "param", name, "err", err)
		}
	}
}

func (r *Runner) logFrameMetrics(sim *spindle.Simulation, frame int) {
	if r.tracker == nil {
		return
	}
	activeSpools := 0
	totalChoices := 0
	for _, out := range sim.SessionOutcomes() {
		totalChoices += len(out.Choices)
		activeSpools += len(out.SpoolsEntered) - len(out.SpoolsCompleted)
	}
	r.metric("active_spools", frame, float64(activeSpools))
	r.metric("choices_made", frame, float64(totalChoices))
}

func (r *Runner) metric(name string, step int, value float64) {
	if err := r.tracker.LogMetric(name, step, value); err != nil {
		r.logger.Warn("metric log failed", "metric", name, "err", err)
	}
}

func (r *Runner) logOutcomes(sim *spindle.Simulation, outcomes []domain.SessionOutcome) {
	if r.tracker == nil {
		return
	}
	if err := r.tracker.LogArtifact("session_outcomes", outcomes); err != nil {
		r.logger.Warn("outcome artifact log failed", "err", err)
	}
}
