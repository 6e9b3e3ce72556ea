// Package domain contains the core data model of the Spindle simulation:
// storyworld definitions (variables, gates, spools, encounters), runtime
// state (variable states, spool progress), the per-agent view projection,
// the unified event log entry, and the session outcome summary.
//
// Everything in this package is plain data. Behavior (mutation, gate
// evaluation, view construction, the frame loop) lives in internal/sim.
package domain
