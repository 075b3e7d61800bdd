// Package metrics exposes Prometheus metrics for the subscription widget.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "subscribebox"

// Metrics holds the widget's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	submissionsTotal *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// New creates and registers the widget metrics. A nil registry gets a fresh
// one carrying the Go runtime and process collectors.
func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of form submit attempts by outcome",
		},
		[]string{"outcome"}, // invalid, subscribed, rejected, failed, busy, closed
	)

	m.upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Time taken by the newsletter endpoint to answer",
			// 50ms .. ~51s; the default request timeout is 30s
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 11),
		},
		[]string{"result"}, // accepted, rejected, failed
	)
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.submissionsTotal.Describe(ch)
	m.upstreamDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.submissionsTotal.Collect(ch)
	m.upstreamDuration.Collect(ch)
}

// RecordSubmission counts one submit attempt.
func (m *Metrics) RecordSubmission(outcome string) {
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records one newsletter endpoint round trip.
func (m *Metrics) ObserveUpstream(result string, elapsed time.Duration) {
	m.upstreamDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// TrackSessions exports the live session count as a gauge sampled at scrape time.
func (m *Metrics) TrackSessions(count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of mounted form instances",
		},
		func() float64 { return float64(count()) },
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:      m.registry,
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
