// Package ports defines the interfaces at the simulation core's boundaries:
// the agent decision callback, the event sink, the snapshot store, the
// storyworld loader, and the run tracker. Adapters under pkg/adapters
// provide the concrete implementations.
package ports
