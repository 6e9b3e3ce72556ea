package sim

import (
	"github.com/spoolworks/spindle/pkg/domain"
)

// WorldState owns the authoritative variable values and per-agent narrative
// progress for one storyworld instance. It is exclusively held and mutated
// by the engine; accessors hand out copies so no caller can alias internal
// state. It knows nothing about agents' epistemic rules.
type WorldState struct {
	storyworld *domain.Storyworld
	frame      int
	vars       map[string]domain.VariableState
	progress   map[string][]domain.SpoolProgress
}

// NewWorldState initializes runtime state from the storyworld's variable
// defaults. Exactly one VariableState exists per declared variable.
func NewWorldState(sw *domain.Storyworld) *WorldState {
	vars := make(map[string]domain.VariableState, len(sw.Variables))
	for _, v := range sw.Variables {
		vars[v.ID] = domain.VariableState{
			VariableID: v.ID,
			Value:      v.Default,
		}
	}
	return &WorldState{
		storyworld: sw,
		vars:       vars,
		progress:   make(map[string][]domain.SpoolProgress),
	}
}

// Storyworld returns the immutable definition this world was built from.
func (w *WorldState) Storyworld() *domain.Storyworld { return w.storyworld }

// Frame returns the current frame index.
func (w *WorldState) Frame() int { return w.frame }

// AdvanceFrame increments the frame counter. No side effects on variables.
func (w *WorldState) AdvanceFrame() { w.frame++ }

// Variable returns the runtime state for a variable id.
func (w *WorldState) Variable(id string) (domain.VariableState, bool) {
	vs, ok := w.vars[id]
	return vs, ok
}

// Variables returns a copy of all variable states.
func (w *WorldState) Variables() map[string]domain.VariableState {
	out := make(map[string]domain.VariableState, len(w.vars))
	for k, v := range w.vars {
		out[k] = v
	}
	return out
}

// ApplyMutation applies one variable mutation on behalf of actorID.
// A mutation against an undeclared variable is a silent no-op. Operations
// whose operand or current value has the wrong runtime type fail with
// *domain.TypeMismatchError and leave the variable untouched.
func (w *WorldState) ApplyMutation(m domain.VariableMutation, actorID string) error {
	cur, ok := w.vars[m.Variable]
	if !ok {
		return nil
	}

	next, err := mutate(cur.Value, m)
	if err != nil {
		return err
	}

	w.vars[m.Variable] = domain.VariableState{
		VariableID:        m.Variable,
		Value:             next,
		LastModifiedFrame: w.frame,
		ModifiedBy:        actorID,
	}
	return nil
}

func mutate(cur any, m domain.VariableMutation) (any, error) {
	switch m.Op {
	case domain.MutationSet:
		return m.Value, nil

	case domain.MutationAdd, domain.MutationSubtract, domain.MutationMultiply:
		a, ok := asNumber(cur)
		if !ok {
			return nil, &domain.TypeMismatchError{Variable: m.Variable, Op: string(m.Op), Value: cur, Want: "number"}
		}
		b, ok := asNumber(m.Value)
		if !ok {
			return nil, &domain.TypeMismatchError{Variable: m.Variable, Op: string(m.Op), Value: m.Value, Want: "number"}
		}
		switch m.Op {
		case domain.MutationAdd:
			return a + b, nil
		case domain.MutationSubtract:
			return a - b, nil
		default:
			return a * b, nil
		}

	case domain.MutationAppend:
		seq, ok := asSequence(cur)
		if !ok {
			return nil, &domain.TypeMismatchError{Variable: m.Variable, Op: string(m.Op), Value: cur, Want: "sequence"}
		}
		out := make([]any, 0, len(seq)+1)
		out = append(out, seq...)
		return append(out, m.Value), nil

	case domain.MutationRemove:
		seq, ok := asSequence(cur)
		if !ok {
			return nil, &domain.TypeMismatchError{Variable: m.Variable, Op: string(m.Op), Value: cur, Want: "sequence"}
		}
		out := make([]any, 0, len(seq))
		for _, el := range seq {
			if !looseEqual(el, m.Value) {
				out = append(out, el)
			}
		}
		return out, nil

	case domain.MutationToggle:
		b, ok := cur.(bool)
		if !ok {
			return nil, &domain.TypeMismatchError{Variable: m.Variable, Op: string(m.Op), Value: cur, Want: "bool"}
		}
		return !b, nil

	default:
		return nil, &domain.TypeMismatchError{Variable: m.Variable, Op: string(m.Op), Value: m.Value, Want: "known mutation op"}
	}
}

// AgentSpoolProgress returns a deep copy of the agent's ordered progress
// list. Callers must read-modify-write via SetAgentSpoolProgress; there is
// deliberately no partial-update API.
func (w *WorldState) AgentSpoolProgress(agentID string) []domain.SpoolProgress {
	return domain.CloneProgressList(w.progress[agentID])
}

// SetAgentSpoolProgress replaces the agent's whole progress list.
func (w *WorldState) SetAgentSpoolProgress(agentID string, list []domain.SpoolProgress) {
	w.progress[agentID] = domain.CloneProgressList(list)
}

// ProgressAgents returns the ids of agents with any recorded progress.
func (w *WorldState) ProgressAgents() []string {
	out := make([]string, 0, len(w.progress))
	for id := range w.progress {
		out = append(out, id)
	}
	return out
}

// asNumber normalizes the numeric shapes JSON and YAML decoding produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, el := range s {
			out[i] = el
		}
		return out, true
	case nil:
		// An unset SET variable behaves as an empty sequence.
		return nil, true
	default:
		return nil, false
	}
}

// looseEqual compares scalars across the int/float boundary that mixed
// JSON/YAML decoding introduces.
func looseEqual(a, b any) bool {
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			return an == bn
		}
		return false
	}
	return a == b
}
