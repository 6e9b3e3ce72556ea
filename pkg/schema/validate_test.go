package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/schema"
)

func validWorld() *domain.Storyworld {
	return &domain.Storyworld{
		ID:      "demo",
		Name:    "Demo",
		Version: "1",
		Variables: []domain.Variable{
			{ID: "trust", Type: domain.VarNumber, Scope: domain.ScopeGlobal, Default: float64(50)},
		},
		Gates: []domain.Gate{
			{ID: "open", Condition: domain.GateCondition{Op: domain.OpGTE, Variable: "trust", Value: float64(10)}},
		},
		Spools: []domain.Spool{
			{ID: "intro", EntryGate: "open", EntryEncounter: "meet", Encounters: []string{"meet"}},
		},
		Encounters: []domain.Encounter{
			{ID: "meet", SpoolID: "intro", Choices: []domain.Choice{
				{ID: "wave", Text: "Wave", Mutations: []domain.VariableMutation{
					{Variable: "trust", Op: domain.MutationAdd, Value: float64(5)},
				}, Terminal: true},
			}},
		},
	}
}

func TestValidate_AcceptsWellFormedWorld(t *testing.T) {
	assert.NoError(t, schema.Validate(validWorld()))
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Storyworld)
		path   string
	}{
		{"missing storyworld id", func(sw *domain.Storyworld) { sw.ID = "" }, "id"},
		{"duplicate variable", func(sw *domain.Storyworld) {
			sw.Variables = append(sw.Variables, sw.Variables[0])
		}, "variables.trust"},
		{"unknown variable type", func(sw *domain.Storyworld) {
			sw.Variables[0].Type = "TENSOR"
		}, "variables.trust.type"},
		{"min exceeds max", func(sw *domain.Storyworld) {
			lo, hi := 10.0, 1.0
			sw.Variables[0].Min, sw.Variables[0].Max = &lo, &hi
		}, "variables.trust"},
		{"unknown operator", func(sw *domain.Storyworld) {
			sw.Gates[0].Condition.Op = "BETWEEN"
		}, "gates.open"},
		{"NOT without child", func(sw *domain.Storyworld) {
			sw.Gates[0].Condition = domain.GateCondition{Op: domain.OpNot}
		}, "gates.open"},
		{"dangling condition variable", func(sw *domain.Storyworld) {
			sw.Gates[0].Condition.Variable = "ghost"
		}, "gates.open"},
		{"dangling entry gate", func(sw *domain.Storyworld) {
			sw.Spools[0].EntryGate = "ghost"
		}, "spools.intro.entry_gate"},
		{"dangling entry encounter", func(sw *domain.Storyworld) {
			sw.Spools[0].EntryEncounter = "ghost"
		}, "spools.intro.entry_encounter"},
		{"entry encounter outside membership", func(sw *domain.Storyworld) {
			sw.Encounters = append(sw.Encounters, domain.Encounter{ID: "other", SpoolID: "intro"})
			sw.Spools[0].EntryEncounter = "other"
		}, "spools.intro.entry_encounter"},
		{"dangling choice target", func(sw *domain.Storyworld) {
			sw.Encounters[0].Choices[0].NextEncounter = "ghost"
		}, "encounters.meet.choices.wave.next_encounter"},
		{"dangling mutation variable", func(sw *domain.Storyworld) {
			sw.Encounters[0].Choices[0].Mutations[0].Variable = "ghost"
		}, "encounters.meet.choices.wave.mutations[0]"},
		{"unknown mutation op", func(sw *domain.Storyworld) {
			sw.Encounters[0].Choices[0].Mutations[0].Op = "INCR"
		}, "encounters.meet.choices.wave.mutations[0].op"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sw := validWorld()
			tc.mutate(sw)

			err := schema.Validate(sw)
			require.Error(t, err)

			failures := schema.ValidationErrors(err)
			require.NotEmpty(t, failures)

			found := false
			for _, f := range failures {
				if ve, ok := f.(*schema.ValidationError); ok && ve.Path == tc.path {
					found = true
					break
				}
			}
			assert.True(t, found, "expected a failure at %s, got %v", tc.path, err)
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	sw := validWorld()
	sw.ID = ""
	sw.Gates[0].Condition.Op = "BETWEEN"
	sw.Spools[0].EntryEncounter = "ghost"

	err := schema.Validate(sw)
	require.Error(t, err)
	assert.GreaterOrEqual(t, len(schema.ValidationErrors(err)), 3)
}

func TestParse(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		doc := `{
			"id": "demo", "name": "Demo", "version": "1",
			"variables": [{"id": "trust", "type": "NUMBER", "scope": "GLOBAL", "default": 50}],
			"spools": [{"id": "intro", "entry_encounter": "meet", "encounters": ["meet"]}],
			"encounters": [{"id": "meet", "spool_id": "intro", "choices": [{"id": "wave", "text": "Wave", "terminal": true}]}]
		}`
		sw, err := schema.Parse([]byte(doc), schema.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "demo", sw.ID)
		assert.Equal(t, float64(50), sw.Variables[0].Default)
	})

	t.Run("yaml", func(t *testing.T) {
		doc := `
id: demo
name: Demo
version: "1"
variables:
  - id: trust
    type: NUMBER
    scope: GLOBAL
    default: 50
spools:
  - id: intro
    entry_encounter: meet
    encounters: [meet]
encounters:
  - id: meet
    spool_id: intro
    choices:
      - id: wave
        text: Wave
        terminal: true
`
		sw, err := schema.Parse([]byte(doc), schema.FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, "demo", sw.ID)
		assert.Len(t, sw.Encounters, 1)
	})

	t.Run("invalid document fails validation", func(t *testing.T) {
		doc := `{"id": "demo", "spools": [{"id": "s", "entry_encounter": "ghost"}]}`
		_, err := schema.Parse([]byte(doc), schema.FormatJSON)
		assert.Error(t, err)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := schema.Parse([]byte("id: x"), "toml")
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	doc := `
id: demo
name: Demo
version: "1"
variables:
  - {id: trust, type: NUMBER, scope: GLOBAL, default: 50}
spools:
  - {id: intro, entry_encounter: meet, encounters: [meet]}
encounters:
  - id: meet
    spool_id: intro
    choices:
      - {id: wave, text: Wave, terminal: true}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	sw, err := schema.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", sw.ID)

	t.Run("unsupported extension", func(t *testing.T) {
		bad := filepath.Join(dir, "world.toml")
		require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
		_, err := schema.LoadFile(bad)
		assert.Error(t, err)
	})

	t.Run("loader resolves refs against base path", func(t *testing.T) {
		loader := schema.NewFileLoader(dir)
		sw, err := loader.Load(t.Context(), "world.yaml")
		require.NoError(t, err)
		assert.Equal(t, "demo", sw.ID)
	})
}
