package runner

import (
	"context"
	"math/rand"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// NoOpDecider always passes. Useful for frame-loop tests and as an
// explicit placeholder for agent slots driven externally.
type NoOpDecider struct{}

func (NoOpDecider) Decide(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	return nil, nil
}

// ScriptedDecider replays a fixed per-agent action sequence, one action per
// frame, then passes. Deterministic, so choice-sequence logs are stable
// across runs.
type ScriptedDecider struct {
	scripts map[string][]ports.AgentAction
	cursors map[string]int
}

// NewScriptedDecider creates a decider over per-agent action scripts.
func NewScriptedDecider(scripts map[string][]ports.AgentAction) *ScriptedDecider {
	return &ScriptedDecider{
		scripts: scripts,
		cursors: make(map[string]int, len(scripts)),
	}
}

func (d *ScriptedDecider) Decide(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	script := d.scripts[agentID]
	cursor := d.cursors[agentID]
	if cursor >= len(script) {
		return nil, nil
	}
	d.cursors[agentID] = cursor + 1
	action := script[cursor]
	return &action, nil
}

// RandomDecider explores the storyworld with a seeded source: it enters an
// available spool when idle and otherwise picks a uniformly random choice
// from the view. The same seed walks the same path through the same
// storyworld.
type RandomDecider struct {
	rng *rand.Rand
}

// NewRandomDecider creates a decider seeded for reproducible exploration.
func NewRandomDecider(seed int64) *RandomDecider {
	return &RandomDecider{rng: rand.New(rand.NewSource(seed))}
}

func (d *RandomDecider) Decide(ctx context.Context, agentID string, view domain.AgentView) (*ports.AgentAction, error) {
	if len(view.AvailableChoices) > 0 {
		choice := view.AvailableChoices[d.rng.Intn(len(view.AvailableChoices))]
		return &ports.AgentAction{ChoiceID: choice.ID}, nil
	}
	if view.CurrentEncounter == nil && len(view.AvailableSpools) > 0 {
		return &ports.AgentAction{SpoolID: view.AvailableSpools[d.rng.Intn(len(view.AvailableSpools))]}, nil
	}
	return nil, nil
}
