package sim

import (
	"github.com/spoolworks/spindle/pkg/domain"
)

// SessionOutcomes exports one summary per agent, in agent declaration
// order. The export combines each agent's ledger with its current progress
// list and an agent-visible variable snapshot. It reads engine state only:
// calling it twice without intervening frames yields identical results.
func (e *Engine) SessionOutcomes() []domain.SessionOutcome {
	outcomes := make([]domain.SessionOutcome, 0, len(e.agents))
	for _, agent := range e.agents {
		outcomes = append(outcomes, e.sessionOutcome(agent))
	}
	return outcomes
}

func (e *Engine) sessionOutcome(agentID string) domain.SessionOutcome {
	out := domain.SessionOutcome{
		SimulationID:    e.id,
		AgentID:         agentID,
		StartFrame:      e.startFrames[agentID],
		EndFrame:        e.world.Frame(),
		Choices:         append([]domain.ChoiceRecord(nil), e.ledgers[agentID]...),
		SpoolsEntered:   []string{},
		SpoolsCompleted: []string{},
		EndingsReached:  []string{},
		FinalVariables:  make(map[string]any),
	}

	for _, p := range e.world.AgentSpoolProgress(agentID) {
		out.SpoolsEntered = append(out.SpoolsEntered, p.SpoolID)
		if p.Status == domain.SpoolCompleted {
			out.SpoolsCompleted = append(out.SpoolsCompleted, p.SpoolID)
		}
	}

	// Endings are derived from terminal-choice ledger entries.
	for _, rec := range out.Choices {
		if rec.Terminal {
			out.EndingsReached = append(out.EndingsReached, rec.EncounterID)
		}
	}

	// Snapshot only the variables this agent could observe.
	for _, def := range e.storyworld.Variables {
		if !domain.ScopeVisible(def.Scope) {
			continue
		}
		if vs, ok := e.world.Variable(def.ID); ok {
			out.FinalVariables[def.ID] = vs.Value
		}
	}
	return out
}
