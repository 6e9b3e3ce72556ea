package schema

import (
	"fmt"

	"github.com/spoolworks/spindle/pkg/domain"
)

// Validate checks a storyworld definition for structural problems: missing
// or duplicate ids, dangling gate/variable/encounter/spool references,
// unknown condition operators, and malformed logical nodes. It returns an
// AggregateError listing every failure found.
//
// Rejecting unknown operators here is what lets the runtime treat a
// MalformedGate error as "this storyworld bypassed the loader". Unknown
// gate *references* checked here would otherwise fall back to the
// evaluator's open-by-default policy.
func Validate(sw *domain.Storyworld) error {
	v := &validator{sw: sw}
	v.run()
	if len(v.errs) > 0 {
		return &AggregateError{Errors: v.errs}
	}
	return nil
}

type validator struct {
	sw   *domain.Storyworld
	errs []error

	variables  map[string]bool
	gates      map[string]bool
	spools     map[string]bool
	encounters map[string]bool
}

func (v *validator) fail(path, reason string, value any) {
	v.errs = append(v.errs, &ValidationError{Path: path, Reason: reason, Value: value})
}

func (v *validator) run() {
	if v.sw.ID == "" {
		v.fail("id", "storyworld id is required", nil)
	}

	v.indexIDs()
	v.checkVariables()
	v.checkGates()
	v.checkSpools()
	v.checkEncounters()
}

func (v *validator) indexIDs() {
	v.variables = make(map[string]bool, len(v.sw.Variables))
	for _, def := range v.sw.Variables {
		if def.ID == "" {
			v.fail("variables", "variable id is required", nil)
			continue
		}
		if v.variables[def.ID] {
			v.fail("variables."+def.ID, "duplicate variable id", nil)
		}
		v.variables[def.ID] = true
	}

	v.gates = make(map[string]bool, len(v.sw.Gates))
	for _, g := range v.sw.Gates {
		if g.ID == "" {
			v.fail("gates", "gate id is required", nil)
			continue
		}
		if v.gates[g.ID] {
			v.fail("gates."+g.ID, "duplicate gate id", nil)
		}
		v.gates[g.ID] = true
	}

	v.spools = make(map[string]bool, len(v.sw.Spools))
	for _, s := range v.sw.Spools {
		if s.ID == "" {
			v.fail("spools", "spool id is required", nil)
			continue
		}
		if v.spools[s.ID] {
			v.fail("spools."+s.ID, "duplicate spool id", nil)
		}
		v.spools[s.ID] = true
	}

	v.encounters = make(map[string]bool, len(v.sw.Encounters))
	for _, e := range v.sw.Encounters {
		if e.ID == "" {
			v.fail("encounters", "encounter id is required", nil)
			continue
		}
		if v.encounters[e.ID] {
			v.fail("encounters."+e.ID, "duplicate encounter id", nil)
		}
		v.encounters[e.ID] = true
	}
}

func (v *validator) checkVariables() {
	for _, def := range v.sw.Variables {
		path := "variables." + def.ID
		switch def.Type {
		case domain.VarNumber, domain.VarBoolean, domain.VarString, domain.VarSet, domain.VarRelation:
		default:
			v.fail(path+".type", "unknown variable type", string(def.Type))
		}
		switch def.Scope {
		case domain.ScopeGlobal, domain.ScopeAgent, domain.ScopeDyadic, domain.ScopeLocal:
		default:
			v.fail(path+".scope", "unknown variable scope", string(def.Scope))
		}
		if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
			v.fail(path, "min exceeds max", nil)
		}
	}
}

func (v *validator) checkGates() {
	for _, g := range v.sw.Gates {
		v.checkCondition("gates."+g.ID, g.Condition)
	}
}

func (v *validator) checkCondition(path string, c domain.GateCondition) {
	if !domain.KnownOperator(c.Op) {
		v.fail(path, "unknown operator", string(c.Op))
		return
	}

	switch c.Op {
	case domain.OpAnd, domain.OpOr:
		for i, child := range c.Children {
			v.checkCondition(fmt.Sprintf("%s.children[%d]", path, i), child)
		}
	case domain.OpNot:
		if len(c.Children) != 1 {
			v.fail(path, "NOT requires exactly one child", len(c.Children))
			return
		}
		v.checkCondition(path+".children[0]", c.Children[0])
	default:
		// Leaf operators name a variable.
		if c.Variable == "" {
			v.fail(path, "condition requires a variable", string(c.Op))
		} else if !v.variables[c.Variable] {
			v.fail(path, "unknown variable reference", c.Variable)
		}
	}
}

func (v *validator) gateRef(path, gateID string) {
	if gateID != "" && !v.gates[gateID] {
		v.fail(path, "unknown gate reference", gateID)
	}
}

func (v *validator) checkSpools() {
	for _, s := range v.sw.Spools {
		path := "spools." + s.ID
		v.gateRef(path+".entry_gate", s.EntryGate)

		if s.EntryEncounter == "" {
			v.fail(path+".entry_encounter", "entry encounter is required", nil)
		} else if !v.encounters[s.EntryEncounter] {
			v.fail(path+".entry_encounter", "unknown encounter reference", s.EntryEncounter)
		}

		member := make(map[string]bool, len(s.Encounters))
		for _, encID := range s.Encounters {
			if !v.encounters[encID] {
				v.fail(path+".encounters", "unknown encounter reference", encID)
			}
			member[encID] = true
		}
		if s.EntryEncounter != "" && len(s.Encounters) > 0 && !member[s.EntryEncounter] {
			v.fail(path+".entry_encounter", "entry encounter not in membership list", s.EntryEncounter)
		}
	}
}

func (v *validator) checkEncounters() {
	for _, e := range v.sw.Encounters {
		path := "encounters." + e.ID
		if e.SpoolID != "" && !v.spools[e.SpoolID] {
			v.fail(path+".spool_id", "unknown spool reference", e.SpoolID)
		}
		v.gateRef(path+".entry_gate", e.EntryGate)
		v.gateRef(path+".exit_gate", e.ExitGate)

		seen := make(map[string]bool, len(e.Choices))
		for _, c := range e.Choices {
			cpath := path + ".choices." + c.ID
			if c.ID == "" {
				v.fail(path+".choices", "choice id is required", nil)
				continue
			}
			if seen[c.ID] {
				v.fail(cpath, "duplicate choice id", nil)
			}
			seen[c.ID] = true

			v.gateRef(cpath+".gate", c.Gate)
			if c.NextEncounter != "" && !v.encounters[c.NextEncounter] {
				v.fail(cpath+".next_encounter", "unknown encounter reference", c.NextEncounter)
			}
			if c.NextSpool != "" && !v.spools[c.NextSpool] {
				v.fail(cpath+".next_spool", "unknown spool reference", c.NextSpool)
			}
			for i, m := range c.Mutations {
				mpath := fmt.Sprintf("%s.mutations[%d]", cpath, i)
				if !v.variables[m.Variable] {
					v.fail(mpath, "unknown variable reference", m.Variable)
				}
				switch m.Op {
				case domain.MutationSet, domain.MutationAdd, domain.MutationSubtract,
					domain.MutationMultiply, domain.MutationAppend, domain.MutationRemove,
					domain.MutationToggle:
				default:
					v.fail(mpath+".op", "unknown mutation op", string(m.Op))
				}
			}
		}
	}
}
