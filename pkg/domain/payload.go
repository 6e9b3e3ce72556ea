package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Typed payload shapes for the event types the core emits. The event itself
// carries a generic map so new event types stay forward compatible; these
// structs are the decoded form for consumers that know the type.

// VariableChangedPayload describes one applied mutation.
type VariableChangedPayload struct {
	Variable string     `mapstructure:"variable"`
	Op       MutationOp `mapstructure:"op"`
	Operand  any        `mapstructure:"operand"`
	NewValue any        `mapstructure:"new_value"`
	ChoiceID string     `mapstructure:"choice_id,omitempty"`
}

// ChoiceMadePayload describes a resolved choice.
type ChoiceMadePayload struct {
	EncounterID      string   `mapstructure:"encounter_id"`
	ChoiceID         string   `mapstructure:"choice_id"`
	AvailableChoices []string `mapstructure:"available_choices"`
	ChoiceIndex      int      `mapstructure:"choice_index"`
}

// CommunicationPayload carries an agent message mediated through the event
// layer. There is no direct agent-to-agent delivery.
type CommunicationPayload struct {
	Message string `mapstructure:"message"`
}

// AgentFailurePayload describes a timed-out or errored decision callback.
type AgentFailurePayload struct {
	Reason string `mapstructure:"reason"`
}

// SpoolPayload names the spool (and entry encounter, when relevant) for
// spool lifecycle events.
type SpoolPayload struct {
	SpoolID     string `mapstructure:"spool_id"`
	EncounterID string `mapstructure:"encounter_id,omitempty"`
}

// SnapshotPayload references a captured snapshot.
type SnapshotPayload struct {
	Frame int `mapstructure:"frame"`
}

// TurnPayload describes a strategy-overlay turn boundary.
type TurnPayload struct {
	Turn        int      `mapstructure:"turn"`
	Phase       string   `mapstructure:"phase"`
	ActionOrder []string `mapstructure:"action_order,omitempty"`
}

// DecodePayload maps an event's generic payload onto a typed shape.
func DecodePayload(ev SimulationEvent, out any) error {
	if err := mapstructure.Decode(ev.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", ev.Type, err)
	}
	return nil
}
