package charm

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.

	"github.com/mintel/elasticsearch-charm/internal/pkg/metrics"
	"github.com/mintel/elasticsearch-charm/pkg/es/health" // Cluster health probing.
)

// Instrumentation holds Prometheus metrics specific to the charm.
type Instrumentation struct {
	// Duration of hooks by hook name and status.
	HookDuration *prometheus.HistogramVec

	// Count of health check verdicts.
	Verdicts *prometheus.CounterVec

	// Count of data migrations by status.
	Migrations *prometheus.CounterVec
}

// NewInstrumentation returns a new Instrumentation.
func NewInstrumentation(namespace string) *Instrumentation {
	return &Instrumentation{
		HookDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hook_duration_seconds",
			Help:      "Duration of hooks, including the playbook run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{metrics.LabelHook, metrics.LabelStatus}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_checks_total",
			Help:      "Count of cluster health checks by verdict.",
		}, []string{"healthy", "cluster_status"}),
		Migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Count of data directory migrations by status.",
		}, []string{metrics.LabelStatus}),
	}
}

// ObserveVerdict counts a health check.
func (m *Instrumentation) ObserveVerdict(v health.Verdict) {
	m.Verdicts.WithLabelValues(strconv.FormatBool(v.Healthy), string(v.Status)).Inc()
}

// ObserveMigration counts a migration.
func (m *Instrumentation) ObserveMigration(err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	m.Migrations.WithLabelValues(status).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *Instrumentation) Describe(c chan<- *prometheus.Desc) {
	m.HookDuration.Describe(c)
	m.Verdicts.Describe(c)
	m.Migrations.Describe(c)
}

// Collect implements the prometheus.Collector interface.
func (m *Instrumentation) Collect(c chan<- prometheus.Metric) {
	m.HookDuration.Collect(c)
	m.Verdicts.Collect(c)
	m.Migrations.Collect(c)
}
