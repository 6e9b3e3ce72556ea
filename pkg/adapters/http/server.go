// Package http exposes the simulation engine as a JSON API: upload a
// storyworld, start the simulation, queue agent actions, step frames, and
// read views, events, and outcomes. Agent decisions for API-driven
// simulations flow through a QueueDecider; everything else is the same
// engine the library surface uses.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/internal/logging"
	"github.com/spoolworks/spindle/pkg/adapters/memory"
	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/observability"
	"github.com/spoolworks/spindle/pkg/ports"
	"github.com/spoolworks/spindle/pkg/schema"
	"github.com/spoolworks/spindle/pkg/session"
)

// simEntry bundles one simulation with its queue and event log.
type simEntry struct {
	queue *QueueDecider
	sink  *memory.Sink
}

// Server hosts simulations over HTTP.
type Server struct {
	manager  *session.Manager
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics

	mu      sync.Mutex
	entries map[string]*simEntry
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server with an empty simulation registry. Engine
// events from every hosted simulation feed one shared metrics registry,
// exposed at /metrics.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:   logging.NewNop(),
		registry: prometheus.NewRegistry(),
		entries:  make(map[string]*simEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = observability.NewMetrics(s.registry)
	s.manager = session.NewManager(session.WithLogger(s.logger))
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/simulations", func(r chi.Router) {
		r.Post("/", s.createSimulation)
		r.Get("/", s.listSimulations)

		r.Route("/{simulationID}", func(r chi.Router) {
			r.Get("/", s.getSimulation)
			r.Post("/start", s.startSimulation)
			r.Post("/frames", s.stepFrames)
			r.Get("/events", s.getEvents)
			r.Get("/outcomes", s.getOutcomes)
			r.Get("/agents/{agentID}/view", s.getView)
			r.Post("/agents/{agentID}/action", s.queueAction)
		})
	})
	return r
}

type createRequest struct {
	Storyworld json.RawMessage `json:"storyworld"`
	Agents     []string        `json:"agents"`
	MaxFrames  int             `json:"max_frames,omitempty"`
}

type simulationResponse struct {
	ID     string                  `json:"id"`
	Status domain.SimulationStatus `json:"status"`
	Frame  int                     `json:"frame"`
	Agents []string                `json:"agents"`
}

func (s *Server) createSimulation(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sw, err := schema.Parse(body.Storyworld, schema.FormatJSON)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	entry := &simEntry{
		queue: NewQueueDecider(),
		sink:  memory.NewSink(),
	}
	sim, err := spindle.New(sw, body.Agents, entry.queue,
		spindle.WithEventSink(observability.NewInstrumentedSink(s.metrics, entry.sink)),
		spindle.WithLogger(s.logger),
		spindle.WithMaxFrames(body.MaxFrames),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	s.entries[sim.ID()] = entry
	s.mu.Unlock()
	s.manager.Put(sim)

	s.logger.Info("simulation created", "simulation", sim.ID(), "storyworld", sw.ID)
	writeJSON(w, http.StatusCreated, simulationResponse{
		ID:     sim.ID(),
		Status: sim.Status(),
		Frame:  sim.Frame(),
		Agents: sim.Agents(),
	})
}

func (s *Server) listSimulations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"simulations": s.manager.List()})
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	s.withSim(w, r, func(sim *spindle.Simulation) (int, any, error) {
		return http.StatusOK, simulationResponse{
			ID:     sim.ID(),
			Status: sim.Status(),
			Frame:  sim.Frame(),
			Agents: sim.Agents(),
		}, nil
	})
}

func (s *Server) startSimulation(w http.ResponseWriter, r *http.Request) {
	s.withSim(w, r, func(sim *spindle.Simulation) (int, any, error) {
		if err := sim.Start(r.Context()); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, map[string]any{"status": sim.Status()}, nil
	})
}

type stepRequest struct {
	Count int `json:"count,omitempty"`
}

func (s *Server) stepFrames(w http.ResponseWriter, r *http.Request) {
	var body stepRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	count := body.Count
	if count <= 0 {
		count = 1
	}

	s.withSim(w, r, func(sim *spindle.Simulation) (int, any, error) {
		for i := 0; i < count && sim.Status() == domain.StatusRunning; i++ {
			if err := sim.ExecuteFrame(r.Context()); err != nil {
				return 0, nil, err
			}
		}
		return http.StatusOK, map[string]any{
			"frame":  sim.Frame(),
			"status": sim.Status(),
		}, nil
	})
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	s.withSim(w, r, func(sim *spindle.Simulation) (int, any, error) {
		view, err := sim.View(agentID)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, view, nil
	})
}

func (s *Server) queueAction(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	var action ports.AgentAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	simID := chi.URLParam(r, "simulationID")
	s.mu.Lock()
	entry, ok := s.entries[simID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSimulationNotFound)
		return
	}

	entry.queue.Push(agentID, action)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"pending": entry.queue.Pending(agentID),
	})
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	simID := chi.URLParam(r, "simulationID")
	s.mu.Lock()
	entry, ok := s.entries[simID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSimulationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": entry.sink.Events()})
}

func (s *Server) getOutcomes(w http.ResponseWriter, r *http.Request) {
	s.withSim(w, r, func(sim *spindle.Simulation) (int, any, error) {
		return http.StatusOK, map[string]any{"outcomes": sim.SessionOutcomes()}, nil
	})
}

// withSim runs fn under the simulation's lock and writes the response.
func (s *Server) withSim(w http.ResponseWriter, r *http.Request, fn func(*spindle.Simulation) (int, any, error)) {
	simID := chi.URLParam(r, "simulationID")

	var status int
	var payload any
	err := s.manager.WithSimulation(r.Context(), simID, func(_ context.Context, sim *spindle.Simulation) error {
		var fnErr error
		status, payload, fnErr = fn(sim)
		return fnErr
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, status, payload)
}

func statusFor(err error) int {
	var transition *domain.InvalidStateTransitionError
	switch {
	case errors.Is(err, domain.ErrSimulationNotFound):
		return http.StatusNotFound
	case errors.As(err, &transition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
