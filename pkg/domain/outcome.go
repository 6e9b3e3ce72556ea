package domain

// ChoiceRecord is one entry in an agent's session ledger. AvailableChoices
// is the full statically declared choice-id list of the encounter, not the
// gate-filtered subset, and ChoiceIndex is the chosen id's position in it.
type ChoiceRecord struct {
	Frame            int      `json:"frame"`
	EncounterID      string   `json:"encounter_id"`
	ChoiceID         string   `json:"choice_id"`
	AvailableChoices []string `json:"available_choices"`
	ChoiceIndex      int      `json:"choice_index"`
	Terminal         bool     `json:"terminal,omitempty"`
}

// SessionOutcome summarizes one agent's full run for downstream behavioral
// analysis. Computed on demand at export time; never mutated afterward.
type SessionOutcome struct {
	SimulationID string `json:"simulation_id"`
	AgentID      string `json:"agent_id"`
	StartFrame   int    `json:"start_frame"`
	EndFrame     int    `json:"end_frame"`

	Choices []ChoiceRecord `json:"choices"`

	SpoolsEntered   []string `json:"spools_entered"`
	SpoolsCompleted []string `json:"spools_completed"`

	// EndingsReached lists encounter ids where this agent made a terminal
	// choice, in the order they were reached.
	EndingsReached []string `json:"endings_reached"`

	// FinalVariables snapshots the agent-visible variable values at export.
	FinalVariables map[string]any `json:"final_variables"`
}
