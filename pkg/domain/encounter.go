package domain

// Choice is one selectable option inside an encounter.
type Choice struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`

	// Gate, when set, must evaluate true for the choice to be offered.
	Gate string `json:"gate,omitempty" yaml:"gate,omitempty"`

	// Mutations are applied in declaration order when the choice is made.
	Mutations []VariableMutation `json:"mutations,omitempty" yaml:"mutations,omitempty"`

	// Routing, applied in priority order: Terminal wins over NextEncounter,
	// which wins over NextSpool.
	NextEncounter string `json:"next_encounter,omitempty" yaml:"next_encounter,omitempty"`
	NextSpool     string `json:"next_spool,omitempty" yaml:"next_spool,omitempty"`
	Terminal      bool   `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Encounter is a discrete decision point within a spool.
type Encounter struct {
	ID           string   `json:"id" yaml:"id"`
	SpoolID      string   `json:"spool_id" yaml:"spool_id"`
	Participants []string `json:"participants,omitempty" yaml:"participants,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Choices      []Choice `json:"choices" yaml:"choices"`
	EntryGate    string   `json:"entry_gate,omitempty" yaml:"entry_gate,omitempty"`
	ExitGate     string   `json:"exit_gate,omitempty" yaml:"exit_gate,omitempty"`
}

// ChoiceIDs returns the full static choice-id list in declaration order.
// Session ledgers record this list, not the gate-filtered subset.
func (e Encounter) ChoiceIDs() []string {
	ids := make([]string, len(e.Choices))
	for i, c := range e.Choices {
		ids[i] = c.ID
	}
	return ids
}

// Choice returns the choice with the given id, if declared.
func (e Encounter) Choice(id string) (Choice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}
