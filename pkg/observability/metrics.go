// Package observability provides Prometheus instrumentation for the
// simulation event stream.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// Metrics holds the collectors fed by the event stream.
type Metrics struct {
	events        *prometheus.CounterVec
	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	agentFailures *prometheus.CounterVec
	choices       prometheus.Counter
}

// NewMetrics creates and registers the collectors on the given registerer
// (prometheus.DefaultRegisterer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spindle",
			Name:      "events_total",
			Help:      "Simulation events emitted, by type.",
		}, []string{"type"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spindle",
			Name:      "frames_total",
			Help:      "Frames executed across all simulations.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spindle",
			Name:      "frame_duration_seconds",
			Help:      "Wall time of one executed frame.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		agentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spindle",
			Name:      "agent_failures_total",
			Help:      "Agent decision failures, split by timeout vs error.",
		}, []string{"kind"}),
		choices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spindle",
			Name:      "choices_total",
			Help:      "Choices resolved across all simulations.",
		}),
	}
	reg.MustRegister(m.events, m.frames, m.frameDuration, m.agentFailures, m.choices)
	return m
}

// InstrumentedSink wraps an EventSink and updates collectors as events
// flow through. Wrap the innermost sink so every event is counted once.
type InstrumentedSink struct {
	next    ports.EventSink
	metrics *Metrics
}

// NewInstrumentedSink creates the middleware. next may be nil, in which
// case the sink only records metrics.
func NewInstrumentedSink(metrics *Metrics, next ports.EventSink) *InstrumentedSink {
	return &InstrumentedSink{next: next, metrics: metrics}
}

// Emit updates collectors and forwards the event.
func (s *InstrumentedSink) Emit(ctx context.Context, ev domain.SimulationEvent) error {
	s.metrics.events.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case domain.EventFrameAdvanced:
		s.metrics.frames.Inc()
		if ms, ok := ev.Payload["duration_ms"].(float64); ok {
			s.metrics.frameDuration.Observe(ms / 1000)
		}
	case domain.EventChoiceMade:
		s.metrics.choices.Inc()
	case domain.EventAgentTimeout:
		s.metrics.agentFailures.WithLabelValues("timeout").Inc()
	case domain.EventAgentError:
		s.metrics.agentFailures.WithLabelValues("error").Inc()
	}

	if s.next == nil {
		return nil
	}
	return s.next.Emit(ctx, ev)
}
