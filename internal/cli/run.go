package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/internal/presentation/tui"
	"github.com/spoolworks/spindle/pkg/adapters/file"
	"github.com/spoolworks/spindle/pkg/adapters/sqlite"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
	"github.com/spoolworks/spindle/pkg/runner"
	"github.com/spoolworks/spindle/pkg/strategy"
)

// RunOptions carries the run command's flags.
type RunOptions struct {
	StoryworldPath string
	Agents         []string
	Frames         int
	Seed           int64
	Interactive    bool
	Debug          bool

	TrackDir         string
	DBPath           string
	SnapshotDir      string
	SnapshotInterval int
	FramesPerTurn    int
}

// RunSimulation loads a storyworld and executes it to completion, wiring
// the configured collaborators: sqlite persistence, file snapshots, and
// directory-per-run tracking.
func RunSimulation(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	sw, err := spindle.LoadStoryworld(opts.StoryworldPath)
	if err != nil {
		return fmt.Errorf("failed to load storyworld: %w", err)
	}

	interactive := opts.Interactive && term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		tui.PrintBanner(spindle.Version)
	}

	// Event sinks: sqlite persistence when requested, wrapped by the
	// strategy overlay when turns are enabled.
	var sink ports.EventSink
	var db *sqlite.Store
	if opts.DBPath != "" {
		db, err = sqlite.Open(opts.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		sink = db
	}
	if opts.FramesPerTurn > 0 {
		sink = strategy.New(sink, opts.Agents, strategy.WithFramesPerTurn(opts.FramesPerTurn))
	}

	simOpts := []spindle.Option{spindle.WithLogger(logger)}
	if sink != nil {
		simOpts = append(simOpts, spindle.WithEventSink(sink))
	}
	if opts.SnapshotDir != "" {
		simOpts = append(simOpts,
			spindle.WithSnapshotStore(file.NewStore(opts.SnapshotDir)),
			spindle.WithSnapshotInterval(opts.SnapshotInterval),
		)
	}
	if opts.Frames > 0 {
		simOpts = append(simOpts, spindle.WithMaxFrames(opts.Frames))
	}
	if interactive {
		// A human reading an encounter needs far longer than an agent
		// callback.
		simOpts = append(simOpts, spindle.WithDecisionTimeout(10*time.Minute))
	}

	sim, err := spindle.New(sw, opts.Agents, buildDecider(opts, interactive), simOpts...)
	if err != nil {
		return err
	}

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if opts.TrackDir != "" {
		tracker, err := file.NewTracker(opts.TrackDir, sim.ID())
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, runner.WithTracker(tracker))
		printSystemMessage("tracking run at %s", tracker.Dir())
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	outcomes, runErr := runner.New(runnerOpts...).Run(sigCtx, sim, sw)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	if db != nil {
		if err := db.SaveOutcomes(context.Background(), outcomes); err != nil {
			logger.Warn("outcome persistence failed", "err", err)
		}
	}

	printSystemMessage("simulation %s finished at frame %d (%s)", sim.ID(), sim.Frame(), sim.Status())
	if encoded, err := json.MarshalIndent(outcomes, "", "  "); err == nil {
		fmt.Println(string(encoded))
	}

	return handleExecutionError(runErr)
}

// buildDecider picks the decision source: a human on the first agent slot
// with seeded exploration for the rest, or seeded exploration for all.
func buildDecider(opts RunOptions, interactive bool) ports.AgentDecider {
	random := runner.NewRandomDecider(opts.Seed)
	if !interactive {
		return random
	}

	human := NewInteractiveDecider(os.Stdin, os.Stdout, tui.NewRenderer())
	first := opts.Agents[0]
	return ports.DeciderFunc(func(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
		if agentID == first {
			return human.Decide(ctx, agentID, view)
		}
		return random.Decide(ctx, agentID, view)
	})
}
