package domain

// Config carries per-storyworld simulation tuning. Zero values fall back to
// engine defaults.
type Config struct {
	// MaxFrames ends the simulation when the frame counter reaches it.
	MaxFrames int `json:"max_frames,omitempty" yaml:"max_frames,omitempty"`

	// DecisionTimeoutMS bounds each per-agent decision callback.
	DecisionTimeoutMS int `json:"decision_timeout_ms,omitempty" yaml:"decision_timeout_ms,omitempty"`

	// SnapshotInterval captures a world snapshot every N frames (0 = never).
	SnapshotInterval int `json:"snapshot_interval,omitempty" yaml:"snapshot_interval,omitempty"`

	// MaxConcurrentSpools caps how many spools one agent may hold ACTIVE
	// at once (0 = unlimited).
	MaxConcurrentSpools int `json:"max_concurrent_spools,omitempty" yaml:"max_concurrent_spools,omitempty"`
}

// Storyworld is the static narrative definition for one simulation:
// variables, gates, spools, encounters, and config. Versioned, authored,
// and immutable at runtime.
type Storyworld struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`

	Variables  []Variable  `json:"variables" yaml:"variables"`
	Gates      []Gate      `json:"gates,omitempty" yaml:"gates,omitempty"`
	Spools     []Spool     `json:"spools" yaml:"spools"`
	Encounters []Encounter `json:"encounters" yaml:"encounters"`

	Config Config `json:"config,omitempty" yaml:"config,omitempty"`
}

// Encounter returns the encounter with the given id, if declared.
func (w *Storyworld) Encounter(id string) (Encounter, bool) {
	for _, e := range w.Encounters {
		if e.ID == id {
			return e, true
		}
	}
	return Encounter{}, false
}

// Spool returns the spool with the given id, if declared.
func (w *Storyworld) Spool(id string) (Spool, bool) {
	for _, s := range w.Spools {
		if s.ID == id {
			return s, true
		}
	}
	return Spool{}, false
}

// Gate returns the gate with the given id, if declared.
func (w *Storyworld) Gate(id string) (Gate, bool) {
	for _, g := range w.Gates {
		if g.ID == id {
			return g, true
		}
	}
	return Gate{}, false
}

// Variable returns the variable definition with the given id, if declared.
func (w *Storyworld) Variable(id string) (Variable, bool) {
	for _, v := range w.Variables {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}
