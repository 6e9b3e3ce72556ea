/*
Package spindle is an orchestration layer for running multiple AI or
scripted agents through a structured, branching narrative (a "storyworld")
while strictly isolating what each agent can observe.

The core is a small, precise state machine: an engine-owned world state
(narrative variables plus per-agent arc progress), a pure gate evaluator
over recursive predicate expressions, a per-agent view builder enforcing
epistemic isolation, and a frame loop that observes, collects decisions,
resolves choices, and advances time.

	sw, _ := spindle.LoadStoryworld("worlds/negotiation.json")
	sim, _ := spindle.New(sw, []string{"alice", "bob"}, decider,
		spindle.WithEventSink(sink),
	)
	_ = sim.Start(ctx)
	_ = sim.Run(ctx)
	outcomes := sim.SessionOutcomes()

Agent decisions arrive through the ports.AgentDecider callback, bounded by
a per-agent timeout; a timed-out or errored agent simply has no effect for
that frame. Every state change is recorded in an append-only event log (the
single source of truth for "what happened"), delivered synchronously to a
ports.EventSink. Periodic snapshots and pull-based session outcomes feed
the persistence and tracking collaborators under pkg/adapters.
*/
package spindle
