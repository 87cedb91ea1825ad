package telemetry

// Metrics collects engine-level counters. All methods must be safe for
// concurrent use.
type Metrics interface {
	ObserveEvent(kind string)
	SetTrackedServers(count int)
	ObserveOutput(serverID string, bytes int)
	ObserveInvalidationDropped()
	ObserveWorkflowResult(result string)
}

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveEvent(_ string) {}

func (n *NoopMetrics) SetTrackedServers(_ int) {}

func (n *NoopMetrics) ObserveOutput(_ string, _ int) {}

func (n *NoopMetrics) ObserveInvalidationDropped() {}

func (n *NoopMetrics) ObserveWorkflowResult(_ string) {}

var _ Metrics = (*NoopMetrics)(nil)
