package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exports the triage service metrics.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	findingsTotal   *prometheus.CounterVec
	routesTotal     *prometheus.CounterVec
	collabFailures  *prometheus.CounterVec
}

// NewCollector creates the service collectors on the default registry.
func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith creates the service collectors on a specific registry.
// Tests use this to avoid duplicate registration across cases.
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_requests_total",
			Help: "Total API requests by endpoint",
		}, []string{"endpoint"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triage_request_duration_seconds",
			Help:    "API request duration by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_messages_total",
			Help: "Messages processed by detected kind",
		}, []string{"kind"}),
		findingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_findings_total",
			Help: "Validation findings by severity",
		}, []string{"severity"}),
		routesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_routes_total",
			Help: "Routed inputs by classified kind",
		}, []string{"kind"}),
		collabFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_collaborator_failures_total",
			Help: "Collaborator call failures by collaborator",
		}, []string{"collaborator"}),
	}
}

// ObserveRequest records one API request and its duration.
func (c *Collector) ObserveRequest(endpoint string, d time.Duration) {
	c.requestsTotal.WithLabelValues(endpoint).Inc()
	c.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordMessage counts a processed message by detected kind.
func (c *Collector) RecordMessage(kind string) {
	c.messagesTotal.WithLabelValues(kind).Inc()
}

// RecordFindings counts findings by severity.
func (c *Collector) RecordFindings(errors, warns int) {
	if errors > 0 {
		c.findingsTotal.WithLabelValues("ERROR").Add(float64(errors))
	}
	if warns > 0 {
		c.findingsTotal.WithLabelValues("WARN").Add(float64(warns))
	}
}

// RecordRoute counts a routed input by classified kind.
func (c *Collector) RecordRoute(kind string) {
	c.routesTotal.WithLabelValues(kind).Inc()
}

// RecordCollaboratorFailure counts a failed collaborator call.
func (c *Collector) RecordCollaboratorFailure(collaborator string) {
	c.collabFailures.WithLabelValues(collaborator).Inc()
}
