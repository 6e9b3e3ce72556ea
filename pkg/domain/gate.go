package domain

// Operator is a gate condition operator.
type Operator string

const (
	OpEQ  Operator = "EQ"
	OpNEQ Operator = "NEQ"
	OpGT  Operator = "GT"
	OpGTE Operator = "GTE"
	OpLT  Operator = "LT"
	OpLTE Operator = "LTE"

	OpContains    Operator = "CONTAINS"
	OpNotContains Operator = "NOT_CONTAINS"

	OpExists    Operator = "EXISTS"
	OpNotExists Operator = "NOT_EXISTS"

	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpNot Operator = "NOT"
)

// KnownOperator reports whether op is part of the gate condition language.
// Used by load-time validation so the evaluator never meets an unknown
// operator in a validated storyworld.
func KnownOperator(op Operator) bool {
	switch op {
	case OpEQ, OpNEQ, OpGT, OpGTE, OpLT, OpLTE,
		OpContains, OpNotContains, OpExists, OpNotExists,
		OpAnd, OpOr, OpNot:
		return true
	}
	return false
}

// GateCondition is a recursive predicate expression over world variables.
// Leaf operators (comparisons, membership, existence) read Variable and
// Value; logical operators (AND/OR/NOT) read Children.
type GateCondition struct {
	Op       Operator        `json:"op" yaml:"op"`
	Variable string          `json:"variable,omitempty" yaml:"variable,omitempty"`
	Value    any             `json:"value,omitempty" yaml:"value,omitempty"`
	Children []GateCondition `json:"children,omitempty" yaml:"children,omitempty"`
}

// Gate is a named predicate controlling narrative availability.
// Gates are authored artifacts: evaluated, never mutated, at runtime.
type Gate struct {
	ID        string        `json:"id" yaml:"id"`
	Condition GateCondition `json:"condition" yaml:"condition"`
}
