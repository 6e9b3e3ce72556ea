// Package session manages concurrently accessed simulations for host
// surfaces (HTTP, CLI serve mode). Each simulation is single-owner state,
// so the manager serializes all access per simulation id.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/internal/logging"
	"github.com/spoolworks/spindle/pkg/domain"
)

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager holds live simulations and guards each behind its own lock. It
// uses reference counting to garbage collect locks for idle simulations.
type Manager struct {
	mu    sync.Mutex
	sims  map[string]*spindle.Simulation
	locks map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates an empty simulation manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sims:   make(map[string]*spindle.Simulation),
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Put registers a simulation under its own id.
func (m *Manager) Put(sim *spindle.Simulation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sims[sim.ID()] = sim
	m.logger.Debug("simulation registered", "simulation", sim.ID())
}

// List returns the registered simulation ids.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sims))
	for id := range m.sims {
		ids = append(ids, id)
	}
	return ids
}

// Remove drops a simulation from the manager.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sims, id)
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count, deleting the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithSimulation runs fn while holding the simulation's lock. Returns
// domain.ErrSimulationNotFound for unknown ids.
func (m *Manager) WithSimulation(ctx context.Context, id string, fn func(context.Context, *spindle.Simulation) error) error {
	m.mu.Lock()
	sim, ok := m.sims[id]
	m.mu.Unlock()
	if !ok {
		return domain.ErrSimulationNotFound
	}

	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	return fn(ctx, sim)
}
