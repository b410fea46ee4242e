// Package metrics holds the Prometheus collectors shared by the designer
// service, its store and the live feed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricHTTPRequestDuration   = "roomdesigner_http_request_duration_seconds"
	MetricStoreActionsTotal     = "roomdesigner_store_actions_total"
	MetricSnapshotFailuresTotal = "roomdesigner_snapshot_failures_total"
	MetricLiveConnections       = "roomdesigner_live_connections"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	httpDuration     *prometheus.HistogramVec
	storeActions     *prometheus.CounterVec
	snapshotFailures *prometheus.CounterVec
	liveConnections  prometheus.Gauge
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		storeActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricStoreActionsTotal,
				Help: "Store actions by name and whether they changed state",
			},
			[]string{"action", "applied"},
		),
		snapshotFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSnapshotFailuresTotal,
				Help: "Snapshot load/save failures",
			},
			[]string{"op"},
		),
		liveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricLiveConnections,
				Help: "Open live feed websocket connections",
			},
		),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpDuration,
		m.storeActions,
		m.snapshotFailures,
		m.liveConnections,
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) IncStoreAction(action string, applied bool) {
	if m == nil {
		return
	}
	label := "false"
	if applied {
		label = "true"
	}
	m.storeActions.WithLabelValues(action, label).Inc()
}

func (m *Metrics) IncSnapshotFailure(op string) {
	if m == nil {
		return
	}
	m.snapshotFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) LiveConnected() {
	if m == nil {
		return
	}
	m.liveConnections.Inc()
}

func (m *Metrics) LiveDisconnected() {
	if m == nil {
		return
	}
	m.liveConnections.Dec()
}
