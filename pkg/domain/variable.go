package domain

// VarType is the semantic type of a narrative variable.
type VarType string

const (
	VarNumber   VarType = "NUMBER"
	VarBoolean  VarType = "BOOLEAN"
	VarString   VarType = "STRING"
	VarSet      VarType = "SET"
	VarRelation VarType = "RELATION"
)

// Scope declares who may observe a variable.
type Scope string

const (
	// ScopeGlobal variables are visible to every agent.
	ScopeGlobal Scope = "GLOBAL"
	// ScopeAgent variables are visible to agents (per-agent semantics).
	ScopeAgent Scope = "AGENT"
	// ScopeDyadic variables belong to a pair of agents. They are defined in
	// the schema but not surfaced to any agent view yet (see ScopeVisible).
	ScopeDyadic Scope = "DYADIC"
	// ScopeLocal variables are engine-internal bookkeeping.
	ScopeLocal Scope = "LOCAL"
)

// ScopeVisible reports whether variables of the given scope appear in agent
// views. This is the single extension point for widening visibility: DYADIC
// pair rules would slot in here once the product defines them.
func ScopeVisible(s Scope) bool {
	return s == ScopeGlobal || s == ScopeAgent
}

// Variable is an authored variable definition. Immutable during a run.
type Variable struct {
	ID      string  `json:"id" yaml:"id"`
	Type    VarType `json:"type" yaml:"type"`
	Scope   Scope   `json:"scope" yaml:"scope"`
	Default any     `json:"default,omitempty" yaml:"default,omitempty"`

	// Optional numeric bounds (NUMBER variables only).
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// Optional enumeration of allowed values (STRING variables).
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`
}

// VariableState is the runtime value of one variable in one world state.
type VariableState struct {
	VariableID        string `json:"variable_id"`
	Value             any    `json:"value"`
	LastModifiedFrame int    `json:"last_modified_frame"`
	ModifiedBy        string `json:"modified_by,omitempty"`
}

// MutationOp is the kind of write a VariableMutation performs.
type MutationOp string

const (
	MutationSet      MutationOp = "SET"
	MutationAdd      MutationOp = "ADD"
	MutationSubtract MutationOp = "SUBTRACT"
	MutationMultiply MutationOp = "MULTIPLY"
	MutationAppend   MutationOp = "APPEND"
	MutationRemove   MutationOp = "REMOVE"
	MutationToggle   MutationOp = "TOGGLE"
)

// VariableMutation is a single write applied when a choice is selected.
type VariableMutation struct {
	Variable string     `json:"variable" yaml:"variable"`
	Op       MutationOp `json:"op" yaml:"op"`
	Value    any        `json:"value,omitempty" yaml:"value,omitempty"`

	// TargetAgent selects the subject for AGENT/DYADIC scoped variables.
	TargetAgent string `json:"target_agent,omitempty" yaml:"target_agent,omitempty"`
}
