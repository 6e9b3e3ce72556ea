package domain

// AgentView is the epistemically isolated projection handed to one agent's
// decision callback. It is rebuilt every frame, never persisted as mutable
// state, and never shared with any other agent.
type AgentView struct {
	AgentID      string `json:"agent_id"`
	SimulationID string `json:"simulation_id"`
	Frame        int    `json:"frame"`

	// Variables visible to this agent (GLOBAL and AGENT scopes).
	Variables map[string]VariableState `json:"variables"`

	// AvailableSpools lists enterable spool ids in declaration order.
	AvailableSpools []string `json:"available_spools"`

	// ActiveSpools is this agent's full progress list, unfiltered.
	ActiveSpools []SpoolProgress `json:"active_spools"`

	// CurrentEncounter is the single focus encounter, if any.
	CurrentEncounter *Encounter `json:"current_encounter,omitempty"`

	// AvailableChoices are the focus encounter's gate-passing choices.
	AvailableChoices []Choice `json:"available_choices,omitempty"`

	// RecentHistory holds one-line summaries of recent events involving
	// this agent or no agent at all.
	RecentHistory []string `json:"recent_history,omitempty"`
}
