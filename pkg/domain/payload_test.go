package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolworks/spindle/pkg/domain"
)

func TestDecodePayload(t *testing.T) {
	t.Run("choice made", func(t *testing.T) {
		ev := domain.SimulationEvent{
			Type: domain.EventChoiceMade,
			Payload: map[string]any{
				"encounter_id":      "meet",
				"choice_id":         "wave",
				"available_choices": []string{"wave", "leave"},
				"choice_index":      0,
			},
			Timestamp: time.Now(),
		}

		var payload domain.ChoiceMadePayload
		require.NoError(t, domain.DecodePayload(ev, &payload))
		assert.Equal(t, "wave", payload.ChoiceID)
		assert.Equal(t, []string{"wave", "leave"}, payload.AvailableChoices)
		assert.Equal(t, 0, payload.ChoiceIndex)
	})

	t.Run("variable changed", func(t *testing.T) {
		ev := domain.SimulationEvent{
			Type: domain.EventVariableChanged,
			Payload: map[string]any{
				"variable":  "trust",
				"op":        "ADD",
				"operand":   float64(5),
				"new_value": float64(55),
			},
		}

		var payload domain.VariableChangedPayload
		require.NoError(t, domain.DecodePayload(ev, &payload))
		assert.Equal(t, domain.MutationAdd, payload.Op)
		assert.Equal(t, float64(55), payload.NewValue)
	})

	t.Run("unknown fields are tolerated", func(t *testing.T) {
		ev := domain.SimulationEvent{
			Type:    domain.EventCommunication,
			Payload: map[string]any{"message": "hi", "introduced_later": true},
		}

		var payload domain.CommunicationPayload
		require.NoError(t, domain.DecodePayload(ev, &payload))
		assert.Equal(t, "hi", payload.Message)
	})
}

func TestCloneProgressList(t *testing.T) {
	original := []domain.SpoolProgress{{
		SpoolID: "intro",
		Status:  domain.SpoolActive,
		History: []domain.ProgressEntry{{EncounterID: "meet", ChoiceID: "wave", Frame: 1}},
	}}

	cloned := domain.CloneProgressList(original)
	cloned[0].Status = domain.SpoolCompleted
	cloned[0].History[0].ChoiceID = "leave"

	assert.Equal(t, domain.SpoolActive, original[0].Status)
	assert.Equal(t, "wave", original[0].History[0].ChoiceID)

	assert.Nil(t, domain.CloneProgressList(nil))
}

func TestEncounterChoiceHelpers(t *testing.T) {
	enc := domain.Encounter{
		ID: "meet",
		Choices: []domain.Choice{
			{ID: "wave", Text: "Wave"},
			{ID: "leave", Text: "Leave", Terminal: true},
		},
	}

	assert.Equal(t, []string{"wave", "leave"}, enc.ChoiceIDs())

	choice, ok := enc.Choice("leave")
	require.True(t, ok)
	assert.True(t, choice.Terminal)

	_, ok = enc.Choice("ghost")
	assert.False(t, ok)
}
