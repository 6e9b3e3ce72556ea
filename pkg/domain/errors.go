package domain

import (
	"errors"
	"fmt"
)

// ErrSimulationNotFound is returned when a simulation id cannot be resolved.
var ErrSimulationNotFound = errors.New("simulation not found")

// ErrSnapshotNotFound is returned when a snapshot store has no entry for
// the requested simulation/frame.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrSpoolNotEnterable is returned when an agent attempts to enter a spool
// that is gated closed, already in progress, or not repeatable.
var ErrSpoolNotEnterable = errors.New("spool not enterable")

// SimulationStatus is the lifecycle state of one simulation.
type SimulationStatus string

const (
	StatusInitializing SimulationStatus = "INITIALIZING"
	StatusRunning      SimulationStatus = "RUNNING"
	StatusPaused       SimulationStatus = "PAUSED"
	StatusCompleted    SimulationStatus = "COMPLETED"
	StatusAborted      SimulationStatus = "ABORTED"
)

// InvalidStateTransitionError reports an operation attempted from a status
// that forbids it. Fatal to the call, not to the simulation.
type InvalidStateTransitionError struct {
	Op   string
	From SimulationStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s from %s", e.Op, e.From)
}

// MalformedGateError reports a structurally invalid gate condition: an
// unknown operator or a missing required operand/child. Gates fail loudly
// rather than defaulting to permissive true.
type MalformedGateError struct {
	GateID string
	Op     Operator
	Reason string
}

func (e *MalformedGateError) Error() string {
	if e.GateID != "" {
		return fmt.Sprintf("malformed gate %q: %s (op %s)", e.GateID, e.Reason, e.Op)
	}
	return fmt.Sprintf("malformed gate condition: %s (op %s)", e.Reason, e.Op)
}

// TypeMismatchError reports a mutation or comparison whose runtime value
// type does not match the operation's expectation. The specific operation
// fails instead of silently coercing.
type TypeMismatchError struct {
	Variable string
	Op       string
	Value    any
	Want     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch on %q: %s wants %s, got %T", e.Variable, e.Op, e.Want, e.Value)
}
