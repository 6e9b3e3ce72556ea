package sim

import (
	"github.com/spoolworks/spindle/pkg/domain"
)

// Evaluator is a pure, side-effect-free predicate evaluator over a world
// state. Two calls with identical world state and gate id return identical
// results.
type Evaluator struct {
	gates map[string]domain.Gate
}

// NewEvaluator indexes the storyworld's gates.
func NewEvaluator(sw *domain.Storyworld) *Evaluator {
	gates := make(map[string]domain.Gate, len(sw.Gates))
	for _, g := range sw.Gates {
		gates[g.ID] = g
	}
	return &Evaluator{gates: gates}
}

// Evaluate resolves a gate id against the world for an agent. An empty or
// unknown gate id is open by default: gating is opt-in for narrative
// designers, and load-time validation catches dangling references in
// validated storyworlds. The agent id is accepted for future scoped
// evaluation; current conditions read world variables only.
func (e *Evaluator) Evaluate(gateID string, world *WorldState, agentID string) (bool, error) {
	if gateID == "" {
		return true, nil
	}
	gate, ok := e.gates[gateID]
	if !ok {
		return true, nil
	}
	ok, err := e.evaluateCondition(gate.Condition, world)
	if err != nil {
		if mg, isMG := err.(*domain.MalformedGateError); isMG && mg.GateID == "" {
			mg.GateID = gate.ID
		}
		return false, err
	}
	return ok, nil
}

func (e *Evaluator) evaluateCondition(c domain.GateCondition, world *WorldState) (bool, error) {
	switch c.Op {
	case domain.OpAnd:
		// Empty children: vacuously true.
		for _, child := range c.Children {
			ok, err := e.evaluateCondition(child, world)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case domain.OpOr:
		// Empty children: vacuously false.
		for _, child := range c.Children {
			ok, err := e.evaluateCondition(child, world)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case domain.OpNot:
		if len(c.Children) != 1 {
			return false, &domain.MalformedGateError{Op: c.Op, Reason: "NOT requires exactly one child"}
		}
		ok, err := e.evaluateCondition(c.Children[0], world)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case domain.OpExists, domain.OpNotExists:
		// Presence of a value, not merely a declaration.
		vs, declared := world.Variable(c.Variable)
		present := declared && vs.Value != nil
		if c.Op == domain.OpExists {
			return present, nil
		}
		return !present, nil

	case domain.OpContains, domain.OpNotContains:
		vs, _ := world.Variable(c.Variable)
		seq, ok := asSequence(vs.Value)
		if !ok {
			return false, &domain.TypeMismatchError{Variable: c.Variable, Op: string(c.Op), Value: vs.Value, Want: "sequence"}
		}
		found := false
		for _, el := range seq {
			if looseEqual(el, c.Value) {
				found = true
				break
			}
		}
		if c.Op == domain.OpContains {
			return found, nil
		}
		return !found, nil

	case domain.OpEQ, domain.OpNEQ:
		vs, _ := world.Variable(c.Variable)
		eq := looseEqual(vs.Value, c.Value)
		if c.Op == domain.OpEQ {
			return eq, nil
		}
		return !eq, nil

	case domain.OpGT, domain.OpGTE, domain.OpLT, domain.OpLTE:
		vs, _ := world.Variable(c.Variable)
		a, ok := asNumber(vs.Value)
		if !ok {
			return false, &domain.TypeMismatchError{Variable: c.Variable, Op: string(c.Op), Value: vs.Value, Want: "number"}
		}
		b, ok := asNumber(c.Value)
		if !ok {
			return false, &domain.TypeMismatchError{Variable: c.Variable, Op: string(c.Op), Value: c.Value, Want: "number"}
		}
		switch c.Op {
		case domain.OpGT:
			return a > b, nil
		case domain.OpGTE:
			return a >= b, nil
		case domain.OpLT:
			return a < b, nil
		default:
			return a <= b, nil
		}

	default:
		return false, &domain.MalformedGateError{Op: c.Op, Reason: "unknown operator"}
	}
}
