package sim_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/internal/sim"
	"github.com/spoolworks/spindle/pkg/domain"
)

func numberWorld(t *testing.T) *sim.WorldState {
	t.Helper()
	return sim.NewWorldState(&domain.Storyworld{
		ID: "w",
		Variables: []domain.Variable{
			{ID: "trust", Type: domain.VarNumber, Scope: domain.ScopeGlobal, Default: float64(50)},
			{ID: "armed", Type: domain.VarBoolean, Scope: domain.ScopeGlobal, Default: false},
			{ID: "items", Type: domain.VarSet, Scope: domain.ScopeGlobal, Default: []any{"rope"}},
			{ID: "name", Type: domain.VarString, Scope: domain.ScopeGlobal, Default: "kira"},
		},
	})
}

func TestWorldState_Defaults(t *testing.T) {
	world := numberWorld(t)

	vs, ok := world.Variable("trust")
	require.True(t, ok)
	assert.Equal(t, float64(50), vs.Value)
	assert.Equal(t, 0, vs.LastModifiedFrame)
	assert.Empty(t, vs.ModifiedBy)

	_, ok = world.Variable("missing")
	assert.False(t, ok)

	// One state per declared variable.
	assert.Len(t, world.Variables(), 4)
}

func TestWorldState_ApplyMutation(t *testing.T) {
	t.Run("SET replaces the value", func(t *testing.T) {
		world := numberWorld(t)
		err := world.ApplyMutation(domain.VariableMutation{Variable: "name", Op: domain.MutationSet, Value: "juno"}, "a1")
		require.NoError(t, err)
		vs, _ := world.Variable("name")
		assert.Equal(t, "juno", vs.Value)
		assert.Equal(t, "a1", vs.ModifiedBy)
	})

	t.Run("arithmetic", func(t *testing.T) {
		world := numberWorld(t)
		steps := []struct {
			op   domain.MutationOp
			want float64
		}{
			{domain.MutationAdd, 75},
			{domain.MutationSubtract, 50},
			{domain.MutationMultiply, 1250},
		}
		for _, step := range steps {
			err := world.ApplyMutation(domain.VariableMutation{Variable: "trust", Op: step.op, Value: float64(25)}, "a1")
			require.NoError(t, err)
			vs, _ := world.Variable("trust")
			assert.Equal(t, step.want, vs.Value, string(step.op))
		}
	})

	t.Run("arithmetic on non-number fails with TypeMismatch", func(t *testing.T) {
		world := numberWorld(t)
		err := world.ApplyMutation(domain.VariableMutation{Variable: "name", Op: domain.MutationAdd, Value: float64(1)}, "a1")
		var mismatch *domain.TypeMismatchError
		require.True(t, errors.As(err, &mismatch))

		// Failed mutation leaves the variable untouched.
		vs, _ := world.Variable("name")
		assert.Equal(t, "kira", vs.Value)
	})

	t.Run("APPEND and REMOVE on sequences", func(t *testing.T) {
		world := numberWorld(t)
		require.NoError(t, world.ApplyMutation(domain.VariableMutation{Variable: "items", Op: domain.MutationAppend, Value: "torch"}, "a1"))
		require.NoError(t, world.ApplyMutation(domain.VariableMutation{Variable: "items", Op: domain.MutationAppend, Value: "rope"}, "a1"))
		vs, _ := world.Variable("items")
		assert.Equal(t, []any{"rope", "torch", "rope"}, vs.Value)

		require.NoError(t, world.ApplyMutation(domain.VariableMutation{Variable: "items", Op: domain.MutationRemove, Value: "rope"}, "a1"))
		vs, _ = world.Variable("items")
		assert.Equal(t, []any{"torch"}, vs.Value)
	})

	t.Run("APPEND on scalar fails", func(t *testing.T) {
		world := numberWorld(t)
		err := world.ApplyMutation(domain.VariableMutation{Variable: "trust", Op: domain.MutationAppend, Value: "x"}, "a1")
		var mismatch *domain.TypeMismatchError
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("TOGGLE negates booleans only", func(t *testing.T) {
		world := numberWorld(t)
		require.NoError(t, world.ApplyMutation(domain.VariableMutation{Variable: "armed", Op: domain.MutationToggle}, "a1"))
		vs, _ := world.Variable("armed")
		assert.Equal(t, true, vs.Value)

		err := world.ApplyMutation(domain.VariableMutation{Variable: "trust", Op: domain.MutationToggle}, "a1")
		var mismatch *domain.TypeMismatchError
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("undeclared variable is a silent no-op", func(t *testing.T) {
		world := numberWorld(t)
		err := world.ApplyMutation(domain.VariableMutation{Variable: "ghost", Op: domain.MutationSet, Value: 1}, "a1")
		require.NoError(t, err)
		_, ok := world.Variable("ghost")
		assert.False(t, ok)
	})

	t.Run("records frame and actor", func(t *testing.T) {
		world := numberWorld(t)
		world.AdvanceFrame()
		world.AdvanceFrame()
		require.NoError(t, world.ApplyMutation(domain.VariableMutation{Variable: "trust", Op: domain.MutationSet, Value: float64(10)}, "a2"))
		vs, _ := world.Variable("trust")
		assert.Equal(t, 2, vs.LastModifiedFrame)
		assert.Equal(t, "a2", vs.ModifiedBy)
	})
}

func TestWorldState_MutationDeterminism(t *testing.T) {
	mutations := []domain.VariableMutation{
		{Variable: "trust", Op: domain.MutationAdd, Value: float64(25)},
		{Variable: "trust", Op: domain.MutationMultiply, Value: float64(2)},
		{Variable: "trust", Op: domain.MutationSubtract, Value: float64(30)},
	}

	run := func() any {
		world := numberWorld(t)
		for _, m := range mutations {
			require.NoError(t, world.ApplyMutation(m, "a1"))
		}
		vs, _ := world.Variable("trust")
		return vs.Value
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
	assert.Equal(t, float64(120), first)
}

func TestWorldState_SpoolProgressReadModifyWrite(t *testing.T) {
	world := numberWorld(t)

	assert.Empty(t, world.AgentSpoolProgress("a1"))

	list := []domain.SpoolProgress{{SpoolID: "intro", Status: domain.SpoolActive, CurrentEncounter: "e1"}}
	world.SetAgentSpoolProgress("a1", list)

	// The returned list is a copy: mutating it must not leak into the world.
	got := world.AgentSpoolProgress("a1")
	got[0].Status = domain.SpoolAbandoned
	got[0].History = append(got[0].History, domain.ProgressEntry{EncounterID: "e1", ChoiceID: "c1"})

	fresh := world.AgentSpoolProgress("a1")
	require.Len(t, fresh, 1)
	assert.Equal(t, domain.SpoolActive, fresh[0].Status)
	assert.Empty(t, fresh[0].History)
}

func TestWorldState_AdvanceFrame(t *testing.T) {
	world := numberWorld(t)
	for i := 1; i <= 3; i++ {
		world.AdvanceFrame()
		assert.Equal(t, i, world.Frame())
	}
	// Frames touch nothing else.
	vs, _ := world.Variable("trust")
	assert.Equal(t, 0, vs.LastModifiedFrame)
}
