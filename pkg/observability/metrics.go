package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	dialoguesStarted *prometheus.CounterVec
	dialoguesEnded   *prometheus.CounterVec
	activeDialogues  prometheus.Gauge
	nodeVisits       *prometheus.CounterVec
	choices          *prometheus.CounterVec
	interrupts       *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec

	mu     sync.Mutex
	starts map[string]time.Time
	now    func() time.Time
}

// NewMetrics registers the collectors on reg. Use prometheus.NewRegistry()
// in tests and prometheus.DefaultRegisterer in servers.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		dialoguesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquy_dialogues_started_total",
			Help: "Total number of dialogue runs started.",
		}, []string{"graph_id"}),
		dialoguesEnded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquy_dialogues_ended_total",
			Help: "Total number of dialogue runs ended, partitioned by outcome (ok, error).",
		}, []string{"graph_id", "outcome"}),
		activeDialogues: f.NewGauge(prometheus.GaugeOpts{
			Name: "colloquy_dialogues_active",
			Help: "Number of dialogue runs in progress.",
		}),
		nodeVisits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquy_node_visits_total",
			Help: "Total number of node entries.",
		}, []string{"kind"}),
		choices: f.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquy_choices_selected_total",
			Help: "Total number of choice selections.",
		}, []string{"node_id"}),
		interrupts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquy_interrupts_total",
			Help: "Total number of accepted interrupts.",
		}, []string{"event_id"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "colloquy_dialogue_duration_seconds",
			Help:    "Wall-clock duration of dialogue runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"graph_id"}),
		starts: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Hooks returns lifecycle hooks that record into the collectors.
// Node visits are labelled by kind to keep cardinality bounded.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStart: func(_ context.Context, e *domain.DialogueEvent) {
			m.dialoguesStarted.WithLabelValues(e.GraphID).Inc()
			m.activeDialogues.Inc()
			m.mu.Lock()
			m.starts[e.RunID] = m.now()
			m.mu.Unlock()
		},
		OnDialogueEnd: func(_ context.Context, e *domain.DialogueEvent) {
			outcome := "ok"
			if e.Reason != "" {
				outcome = "error"
			}
			m.dialoguesEnded.WithLabelValues(e.GraphID, outcome).Inc()
			m.activeDialogues.Dec()

			m.mu.Lock()
			start, ok := m.starts[e.RunID]
			delete(m.starts, e.RunID)
			m.mu.Unlock()
			if ok {
				m.runDuration.WithLabelValues(e.GraphID).Observe(m.now().Sub(start).Seconds())
			}
		},
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(string(e.NodeKind)).Inc()
		},
		OnChoiceSelected: func(_ context.Context, e *domain.ChoiceEvent) {
			m.choices.WithLabelValues(e.NodeID).Inc()
		},
		OnInterrupt: func(_ context.Context, e *domain.InterruptEvent) {
			m.interrupts.WithLabelValues(e.EventID).Inc()
		},
	}
}
