package domain

import "time"

// Stage is the frame phase during which an event was emitted.
type Stage string

const (
	StageObservation Stage = "OBSERVATION"
	StageAction      Stage = "ACTION"
	StageResolution  Stage = "RESOLUTION"
	StageTransition  Stage = "TRANSITION"
	StageSystem      Stage = "SYSTEM"
)

// Category groups event types for downstream filtering.
type Category string

const (
	CategoryNarrative Category = "NARRATIVE"
	CategoryAgent     Category = "AGENT"
	CategorySystem    Category = "SYSTEM"
	CategoryStrategy  Category = "STRATEGY"
)

// EventType identifies what happened.
type EventType string

const (
	EventViewDelivered EventType = "VIEW_DELIVERED"
	EventAgentTimeout  EventType = "AGENT_TIMEOUT"
	EventAgentError    EventType = "AGENT_ERROR"
	EventCommunication EventType = "COMMUNICATION"

	EventVariableChanged  EventType = "VARIABLE_CHANGED"
	EventChoiceMade       EventType = "CHOICE_MADE"
	EventInvalidChoice    EventType = "INVALID_CHOICE"
	EventEncounterStarted EventType = "ENCOUNTER_STARTED"
	EventSpoolEntered     EventType = "SPOOL_ENTERED"
	EventSpoolCompleted   EventType = "SPOOL_COMPLETED"

	EventFrameAdvanced     EventType = "FRAME_ADVANCED"
	EventSnapshotCaptured  EventType = "SNAPSHOT_CAPTURED"
	EventSimulationStarted EventType = "SIMULATION_STARTED"
	EventSimulationPaused  EventType = "SIMULATION_PAUSED"
	EventSimulationResumed EventType = "SIMULATION_RESUMED"
	EventSimulationDone    EventType = "SIMULATION_COMPLETED"
	EventSimulationAborted EventType = "SIMULATION_ABORTED"

	EventTurnStarted  EventType = "TURN_STARTED"
	EventPhaseChanged EventType = "PHASE_CHANGED"
)

// SimulationEvent is one append-only log entry. The event log is the single
// source of truth for "what happened"; derived artifacts (outcomes,
// snapshots) are computed from it plus world state.
type SimulationEvent struct {
	SimulationID string         `json:"simulation_id"`
	Frame        int            `json:"frame"`
	Stage        Stage          `json:"stage"`
	Category     Category       `json:"category"`
	Type         EventType      `json:"type"`
	Actor        string         `json:"actor,omitempty"`
	Target       string         `json:"target,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}
