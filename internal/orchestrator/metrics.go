package orchestrator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors reporting swarm activity.
type Metrics struct {
	mergesTotal    *prometheus.CounterVec
	conflictsTotal prometheus.Counter
	tasksActive    prometheus.Gauge
	toolCallsTotal prometheus.Counter
	runDuration    *prometheus.HistogramVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. Collectors are created once to avoid
// duplicate registration panics when several orchestrators exist (tests,
// multiple repos in one process).
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Callers supply a fresh registry when unique metric names are required (for
// example in tests). Registration errors other than AlreadyRegistered panic,
// mirroring promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	mergesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swarm",
			Subsystem: "coordinator",
			Name:      "merges_total",
			Help:      "Merge attempts by strategy and outcome.",
		},
		[]string{"strategy", "status"},
	)
	conflictsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "swarm",
			Subsystem: "coordinator",
			Name:      "conflicts_total",
			Help:      "Merge attempts that ended in a content conflict.",
		},
	)
	tasksActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "swarm",
			Subsystem: "orchestrator",
			Name:      "tasks_active",
			Help:      "Tasks currently being worked by agents.",
		},
	)
	toolCallsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "swarm",
			Subsystem: "agent",
			Name:      "tool_calls_total",
			Help:      "Tool calls dispatched across all agent runs.",
		},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swarm",
			Subsystem: "agent",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of agent runs by handoff status.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"status"},
	)

	collectors := []prometheus.Collector{mergesTotal, conflictsTotal, tasksActive, toolCallsTotal, runDuration}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch collector {
				case mergesTotal:
					mergesTotal = already.ExistingCollector.(*prometheus.CounterVec)
				case conflictsTotal:
					conflictsTotal = already.ExistingCollector.(prometheus.Counter)
				case tasksActive:
					tasksActive = already.ExistingCollector.(prometheus.Gauge)
				case toolCallsTotal:
					toolCallsTotal = already.ExistingCollector.(prometheus.Counter)
				case runDuration:
					runDuration = already.ExistingCollector.(*prometheus.HistogramVec)
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		mergesTotal:    mergesTotal,
		conflictsTotal: conflictsTotal,
		tasksActive:    tasksActive,
		toolCallsTotal: toolCallsTotal,
		runDuration:    runDuration,
	}
}

// ObserveMerge records one merge attempt.
func (m *Metrics) ObserveMerge(strategy string, conflicted, success bool) {
	if m == nil || m.mergesTotal == nil {
		return
	}
	status := "failed"
	switch {
	case success:
		status = "merged"
	case conflicted:
		status = "conflicted"
	}
	m.mergesTotal.WithLabelValues(strategy, status).Inc()
	if conflicted {
		m.conflictsTotal.Inc()
	}
}

// ObserveRun records one finished agent run.
func (m *Metrics) ObserveRun(status string, toolCalls int, duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.toolCallsTotal.Add(float64(toolCalls))
}

// IncActiveTasks marks one task as in flight.
func (m *Metrics) IncActiveTasks() {
	if m == nil || m.tasksActive == nil {
		return
	}
	m.tasksActive.Inc()
}

// DecActiveTasks marks one task as done.
func (m *Metrics) DecActiveTasks() {
	if m == nil || m.tasksActive == nil {
		return
	}
	m.tasksActive.Dec()
}
