package sim

import (
	"fmt"

	"github.com/spoolworks/spindle/pkg/domain"
)

// recentHistoryLimit caps how many event summaries a view carries.
const recentHistoryLimit = 10

// ViewBuilder constructs the epistemically isolated projection for one
// agent at the current frame. It is a pure function of (agent, world,
// recent events); it mutates none of its inputs.
type ViewBuilder struct {
	evaluator *Evaluator
}

// NewViewBuilder creates a builder sharing the engine's gate evaluator.
func NewViewBuilder(evaluator *Evaluator) *ViewBuilder {
	return &ViewBuilder{evaluator: evaluator}
}

// Build projects the world into an AgentView for agentID. The view never
// contains another agent's progress, history, or out-of-scope variables.
func (b *ViewBuilder) Build(simulationID, agentID string, world *WorldState, recent []domain.SimulationEvent) (domain.AgentView, error) {
	sw := world.Storyworld()

	view := domain.AgentView{
		AgentID:      agentID,
		SimulationID: simulationID,
		Frame:        world.Frame(),
		Variables:    make(map[string]domain.VariableState),
	}

	for _, def := range sw.Variables {
		if !domain.ScopeVisible(def.Scope) {
			continue
		}
		if vs, ok := world.Variable(def.ID); ok {
			view.Variables[def.ID] = vs
		}
	}

	progress := world.AgentSpoolProgress(agentID)
	view.ActiveSpools = progress

	// Available spools: declaration order, entry-gate filtered, excluding
	// spools this agent already holds progress for. A repeatable spool
	// whose progress is all COMPLETED is offered again.
	for _, spool := range sw.Spools {
		if !enterable(spool, progress) {
			continue
		}
		open, err := b.evaluator.Evaluate(spool.EntryGate, world, agentID)
		if err != nil {
			return domain.AgentView{}, fmt.Errorf("spool %s entry gate: %w", spool.ID, err)
		}
		if open {
			view.AvailableSpools = append(view.AvailableSpools, spool.ID)
		}
	}
	if view.AvailableSpools == nil {
		view.AvailableSpools = []string{}
	}

	// Single focus encounter: the first ACTIVE progress entry with a
	// pending encounter wins. Concurrent multi-encounter agents are not
	// supported by this builder.
	for _, p := range progress {
		if p.Status != domain.SpoolActive || p.CurrentEncounter == "" {
			continue
		}
		enc, ok := sw.Encounter(p.CurrentEncounter)
		if !ok {
			continue
		}
		view.CurrentEncounter = &enc

		for _, choice := range enc.Choices {
			open, err := b.evaluator.Evaluate(choice.Gate, world, agentID)
			if err != nil {
				return domain.AgentView{}, fmt.Errorf("choice %s gate: %w", choice.ID, err)
			}
			if open {
				view.AvailableChoices = append(view.AvailableChoices, choice)
			}
		}
		break
	}

	view.RecentHistory = summarizeRecent(agentID, recent)
	return view, nil
}

// enterable reports whether the agent may be offered this spool given its
// existing progress.
func enterable(spool domain.Spool, progress []domain.SpoolProgress) bool {
	for _, p := range progress {
		if p.SpoolID != spool.ID {
			continue
		}
		if !spool.Repeatable || p.Status != domain.SpoolCompleted {
			return false
		}
	}
	return true
}

// summarizeRecent reduces the trailing event window to one-line summaries,
// keeping only events where the actor is this agent or there is no actor.
func summarizeRecent(agentID string, recent []domain.SimulationEvent) []string {
	var lines []string
	for _, ev := range recent {
		if ev.Actor != "" && ev.Actor != agentID {
			continue
		}
		lines = append(lines, summarize(ev))
	}
	if len(lines) > recentHistoryLimit {
		lines = lines[len(lines)-recentHistoryLimit:]
	}
	return lines
}

// summarize renders one event as a single line keyed by event type. Types
// without a specific rule fall back to the raw type string.
func summarize(ev domain.SimulationEvent) string {
	switch ev.Type {
	case domain.EventChoiceMade:
		return fmt.Sprintf("chose %v in %v", ev.Payload["choice_id"], ev.Payload["encounter_id"])
	case domain.EventVariableChanged:
		return fmt.Sprintf("%v is now %v", ev.Payload["variable"], ev.Payload["new_value"])
	case domain.EventSpoolEntered:
		return fmt.Sprintf("entered spool %v", ev.Payload["spool_id"])
	case domain.EventSpoolCompleted:
		return fmt.Sprintf("completed spool %v", ev.Payload["spool_id"])
	case domain.EventEncounterStarted:
		return fmt.Sprintf("encounter %v began", ev.Payload["encounter_id"])
	case domain.EventCommunication:
		return fmt.Sprintf("said: %v", ev.Payload["message"])
	case domain.EventAgentTimeout:
		return "took no action (timed out)"
	default:
		return string(ev.Type)
	}
}
