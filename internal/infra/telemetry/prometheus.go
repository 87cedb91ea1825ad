package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	events               *prometheus.CounterVec
	trackedServers       prometheus.Gauge
	outputBytes          *prometheus.CounterVec
	invalidationsDropped prometheus.Counter
	workflowResults      *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serverview_control_events_total",
				Help: "Total number of control-service events applied",
			},
			[]string{"kind"},
		),
		trackedServers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "serverview_tracked_servers",
				Help: "Current number of servers in the registry",
			},
		),
		outputBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serverview_output_bytes_total",
				Help: "Total bytes of server output appended to channels",
			},
			[]string{"server"},
		),
		invalidationsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "serverview_invalidations_dropped_total",
				Help: "Change notifications dropped because a subscriber was slow",
			},
		),
		workflowResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serverview_create_workflow_results_total",
				Help: "Server-creation workflow outcomes",
			},
			[]string{"result"},
		),
	}
}

func (m *PrometheusMetrics) ObserveEvent(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) SetTrackedServers(count int) {
	m.trackedServers.Set(float64(count))
}

func (m *PrometheusMetrics) ObserveOutput(serverID string, bytes int) {
	m.outputBytes.WithLabelValues(serverID).Add(float64(bytes))
}

func (m *PrometheusMetrics) ObserveInvalidationDropped() {
	m.invalidationsDropped.Inc()
}

func (m *PrometheusMetrics) ObserveWorkflowResult(result string) {
	m.workflowResults.WithLabelValues(result).Inc()
}

var _ Metrics = (*PrometheusMetrics)(nil)
