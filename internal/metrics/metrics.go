// Package metrics provides Prometheus instruments for simulation runs and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coverage-sim/internal/aggregate"
)

// Manager owns every instrument. The zero value is not usable; a nil
// *Manager is, and records nothing.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	customersServed *prometheus.CounterVec
	customersRadius prometheus.Counter
	datasets        prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewManager creates a Manager on a private registry unless WithRegistry
// says otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "coverage",
		buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "simulation",
		Name:      "runs_total",
		Help:      "Simulation runs by outcome.",
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "simulation",
		Name:      "run_duration_seconds",
		Help:      "Wall time of one simulation run.",
		Buckets:   m.buckets,
	})

	m.customersServed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "simulation",
		Name:      "customers_assigned_total",
		Help:      "In-radius customers by assigned role.",
	}, []string{"role"})

	m.customersRadius = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "simulation",
		Name:      "customers_in_radius_total",
		Help:      "Customers that passed the radius filter.",
	})

	m.datasets = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "server",
		Name:      "datasets",
		Help:      "Dataset snapshots held in memory.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
}

// ObserveRun records one finished simulation.
func (m *Manager) ObserveRun(d time.Duration, s aggregate.Summary, err error) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
	if err != nil {
		m.runs.WithLabelValues("error").Inc()
		return
	}
	m.runs.WithLabelValues("ok").Inc()
	m.customersRadius.Add(float64(s.InRadius))
	m.customersServed.WithLabelValues("principal").Add(float64(s.Principal))
	m.customersServed.WithLabelValues("competitor").Add(float64(s.Competitor))
	m.customersServed.WithLabelValues("unserved").Add(float64(s.Unserved))
}

// SetDatasets reports the number of stored snapshots.
func (m *Manager) SetDatasets(n int) {
	if m == nil {
		return
	}
	m.datasets.Set(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Manager) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry returns the registry the instruments live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
