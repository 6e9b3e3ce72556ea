package sim

import (
	"context"

	"github.com/spoolworks/spindle/pkg/domain"
)

// resolveChoice applies one chosen choice for one agent: ledger entry,
// mutations in declaration order, CHOICE_MADE event, then routing
// (terminal > next encounter > next spool). Invalid choice ids are recorded
// as events and mutate nothing.
func (e *Engine) resolveChoice(ctx context.Context, agentID, choiceID string) {
	choice, encounter, found := e.findChoice(choiceID)
	if !found {
		e.emit(ctx, domain.SimulationEvent{
			Stage:    domain.StageResolution,
			Category: domain.CategorySystem,
			Type:     domain.EventInvalidChoice,
			Actor:    agentID,
			Payload:  map[string]any{"choice_id": choiceID},
		})
		return
	}

	frame := e.world.Frame()

	// Ledger: the full static choice-id list of the encounter, not the
	// gate-filtered subset, plus the chosen id's index within it.
	available := encounter.ChoiceIDs()
	index := -1
	for i, id := range available {
		if id == choiceID {
			index = i
			break
		}
	}
	e.ledgers[agentID] = append(e.ledgers[agentID], domain.ChoiceRecord{
		Frame:            frame,
		EncounterID:      encounter.ID,
		ChoiceID:         choiceID,
		AvailableChoices: available,
		ChoiceIndex:      index,
		Terminal:         choice.Terminal,
	})

	// Mutations, in declaration order, one VARIABLE_CHANGED event each.
	// A type mismatch fails that mutation only; the rest still apply.
	for _, m := range choice.Mutations {
		if err := e.world.ApplyMutation(m, agentID); err != nil {
			e.logger.Warn("mutation failed", "agent", agentID, "variable", m.Variable, "err", err)
			e.emit(ctx, domain.SimulationEvent{
				Stage:    domain.StageResolution,
				Category: domain.CategorySystem,
				Type:     domain.EventAgentError,
				Actor:    agentID,
				Payload:  map[string]any{"reason": err.Error(), "variable": m.Variable},
			})
			continue
		}
		vs, _ := e.world.Variable(m.Variable)
		e.emit(ctx, domain.SimulationEvent{
			Stage:    domain.StageResolution,
			Category: domain.CategoryNarrative,
			Type:     domain.EventVariableChanged,
			Actor:    agentID,
			Payload: map[string]any{
				"variable":  m.Variable,
				"op":        string(m.Op),
				"operand":   m.Value,
				"new_value": vs.Value,
				"choice_id": choiceID,
			},
		})
	}

	e.emit(ctx, domain.SimulationEvent{
		Stage:    domain.StageResolution,
		Category: domain.CategoryNarrative,
		Type:     domain.EventChoiceMade,
		Actor:    agentID,
		Payload: map[string]any{
			"encounter_id":      encounter.ID,
			"choice_id":         choiceID,
			"available_choices": available,
			"choice_index":      index,
		},
	})

	e.recordProgressStep(agentID, encounter, choiceID, frame)

	switch {
	case choice.Terminal:
		e.completeSpool(ctx, agentID, encounter.SpoolID, frame)

	case choice.NextEncounter != "":
		// Updates the first ACTIVE progress entry. Whether the target
		// belongs to the same spool is the storyworld author's call.
		e.advanceEncounter(ctx, agentID, choice.NextEncounter)

	case choice.NextSpool != "":
		if err := e.enterSpool(ctx, agentID, choice.NextSpool); err != nil {
			e.logger.Debug("next-spool entry rejected", "agent", agentID, "spool", choice.NextSpool, "err", err)
		}
	}
}

// findChoice scans all encounters for the choice id.
func (e *Engine) findChoice(choiceID string) (domain.Choice, domain.Encounter, bool) {
	for _, enc := range e.storyworld.Encounters {
		if c, ok := enc.Choice(choiceID); ok {
			return c, enc, true
		}
	}
	return domain.Choice{}, domain.Encounter{}, false
}

// recordProgressStep appends the (encounter, choice, frame) triple to the
// agent's progress for the encounter's owning spool.
func (e *Engine) recordProgressStep(agentID string, encounter domain.Encounter, choiceID string, frame int) {
	progress := e.world.AgentSpoolProgress(agentID)
	for i := range progress {
		if progress[i].SpoolID != encounter.SpoolID {
			continue
		}
		progress[i].History = append(progress[i].History, domain.ProgressEntry{
			EncounterID: encounter.ID,
			ChoiceID:    choiceID,
			Frame:       frame,
		})
		e.world.SetAgentSpoolProgress(agentID, progress)
		return
	}
}

// completeSpool marks the agent's progress for spoolID as COMPLETED.
func (e *Engine) completeSpool(ctx context.Context, agentID, spoolID string, frame int) {
	progress := e.world.AgentSpoolProgress(agentID)
	for i := range progress {
		if progress[i].SpoolID != spoolID || progress[i].Status == domain.SpoolCompleted {
			continue
		}
		progress[i].Status = domain.SpoolCompleted
		progress[i].CurrentEncounter = ""
		progress[i].FrameCompleted = frame
		e.world.SetAgentSpoolProgress(agentID, progress)
		e.emit(ctx, domain.SimulationEvent{
			Stage:    domain.StageResolution,
			Category: domain.CategoryNarrative,
			Type:     domain.EventSpoolCompleted,
			Actor:    agentID,
			Payload:  map[string]any{"spool_id": spoolID},
		})
		return
	}
}

// advanceEncounter points the agent's first ACTIVE progress entry at the
// next encounter.
func (e *Engine) advanceEncounter(ctx context.Context, agentID, encounterID string) {
	progress := e.world.AgentSpoolProgress(agentID)
	for i := range progress {
		if progress[i].Status != domain.SpoolActive {
			continue
		}
		progress[i].CurrentEncounter = encounterID
		e.world.SetAgentSpoolProgress(agentID, progress)
		e.emit(ctx, domain.SimulationEvent{
			Stage:    domain.StageResolution,
			Category: domain.CategoryNarrative,
			Type:     domain.EventEncounterStarted,
			Actor:    agentID,
			Payload:  map[string]any{"encounter_id": encounterID},
		})
		return
	}
}

// EnterSpool creates an ACTIVE progress entry for the agent at the spool's
// entry encounter. Entry is refused when the spool is undeclared, gated
// closed, already in progress (unless repeatable and completed), or the
// agent is at its concurrent-spool cap.
func (e *Engine) EnterSpool(ctx context.Context, agentID, spoolID string) error {
	return e.enterSpool(ctx, agentID, spoolID)
}

func (e *Engine) enterSpool(ctx context.Context, agentID, spoolID string) error {
	spool, ok := e.storyworld.Spool(spoolID)
	if !ok {
		return domain.ErrSpoolNotEnterable
	}

	progress := e.world.AgentSpoolProgress(agentID)
	if !enterable(spool, progress) {
		return domain.ErrSpoolNotEnterable
	}
	if limit := e.storyworld.Config.MaxConcurrentSpools; limit > 0 {
		active := 0
		for _, p := range progress {
			if p.Status == domain.SpoolActive {
				active++
			}
		}
		if active >= limit {
			return domain.ErrSpoolNotEnterable
		}
	}

	open, err := e.evaluator.Evaluate(spool.EntryGate, e.world, agentID)
	if err != nil {
		return err
	}
	if !open {
		return domain.ErrSpoolNotEnterable
	}

	progress = append(progress, domain.SpoolProgress{
		SpoolID:          spool.ID,
		Status:           domain.SpoolActive,
		CurrentEncounter: spool.EntryEncounter,
		FrameEntered:     e.world.Frame(),
	})
	e.world.SetAgentSpoolProgress(agentID, progress)

	e.emit(ctx, domain.SimulationEvent{
		Stage:    domain.StageResolution,
		Category: domain.CategoryNarrative,
		Type:     domain.EventSpoolEntered,
		Actor:    agentID,
		Payload:  map[string]any{"spool_id": spool.ID, "encounter_id": spool.EntryEncounter},
	})
	return nil
}
