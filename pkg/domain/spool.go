package domain

// SpoolStatus is the lifecycle state of an agent's progress through a spool.
type SpoolStatus string

const (
	SpoolAvailable SpoolStatus = "AVAILABLE"
	SpoolActive    SpoolStatus = "ACTIVE"
	SpoolSuspended SpoolStatus = "SUSPENDED"
	SpoolCompleted SpoolStatus = "COMPLETED"
	SpoolAbandoned SpoolStatus = "ABANDONED"
)

// Spool is a narrative arc definition: an ordered run of encounters an agent
// can enter, progress through, and complete. Immutable per storyworld.
type Spool struct {
	ID             string   `json:"id" yaml:"id"`
	EntryGate      string   `json:"entry_gate,omitempty" yaml:"entry_gate,omitempty"`
	EntryEncounter string   `json:"entry_encounter" yaml:"entry_encounter"`
	Encounters     []string `json:"encounters" yaml:"encounters"`

	// Repeatable allows re-entry after completion. Default is disallowed.
	Repeatable bool `json:"repeatable,omitempty" yaml:"repeatable,omitempty"`
}

// ProgressEntry records one (encounter, choice, frame) step in a spool.
type ProgressEntry struct {
	EncounterID string `json:"encounter_id"`
	ChoiceID    string `json:"choice_id"`
	Frame       int    `json:"frame"`
}

// SpoolProgress tracks one agent's run through one spool. History is
// append-only; the entry is never deleted, only status-transitioned.
type SpoolProgress struct {
	SpoolID          string          `json:"spool_id"`
	Status           SpoolStatus     `json:"status"`
	CurrentEncounter string          `json:"current_encounter,omitempty"`
	FrameEntered     int             `json:"frame_entered"`
	FrameCompleted   int             `json:"frame_completed,omitempty"`
	History          []ProgressEntry `json:"history,omitempty"`
}

// Clone returns a deep copy, so callers can hand progress lists across the
// read-modify-write boundary without aliasing world-owned slices.
func (p SpoolProgress) Clone() SpoolProgress {
	out := p
	if p.History != nil {
		out.History = make([]ProgressEntry, len(p.History))
		copy(out.History, p.History)
	}
	return out
}

// CloneProgressList deep-copies a whole progress list.
func CloneProgressList(list []SpoolProgress) []SpoolProgress {
	if list == nil {
		return nil
	}
	out := make([]SpoolProgress, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}
