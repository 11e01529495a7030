package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Navigation metrics
	Redirects *prometheus.CounterVec

	// Invocation metrics
	Invocations        *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec
	InvocationsActive  prometheus.Gauge

	// Normalization metrics
	ResponseShapes *prometheus.CounterVec

	// Breaker metrics
	BreakerState *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Snapshot for JSON API
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current counter values for the JSON health endpoint.
type Snapshot struct {
	TotalRequests    int64 `json:"total_requests"`
	TotalErrors      int64 `json:"total_errors"`
	Redirects        int64 `json:"redirects"`
	Invocations      int64 `json:"invocations"`
	InvocationErrors int64 `json:"invocation_errors"`
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		Redirects: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_navigation_redirects_total",
				Help: "Scheme URL navigations handled by the interceptor",
			},
			[]string{"trigger", "outcome"},
		),

		Invocations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_invocations_total",
				Help: "Remote function invocations",
			},
			[]string{"method", "outcome"},
		),
		InvocationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_invocation_duration_seconds",
				Help:    "Remote function invocation duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		InvocationsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_invocations_active",
				Help: "Invocations currently in flight",
			},
		),

		ResponseShapes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_response_shapes_total",
				Help: "Response shapes seen by the normalizer",
			},
			[]string{"shape"},
		),

		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "launcher_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		WSConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordRedirect records an interceptor decision. trigger is the event kind.
func (m *Metrics) RecordRedirect(trigger, outcome string) {
	m.Redirects.WithLabelValues(trigger, outcome).Inc()
	if outcome == "redirected" {
		m.mu.Lock()
		m.snapshot.Redirects++
		m.mu.Unlock()
	}
}

// RecordInvocation records a completed invocation.
func (m *Metrics) RecordInvocation(method, outcome string, duration time.Duration) {
	m.Invocations.WithLabelValues(method, outcome).Inc()
	m.InvocationDuration.WithLabelValues(method).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Invocations++
	if outcome != "success" {
		m.snapshot.InvocationErrors++
	}
	m.mu.Unlock()
}

// RecordShape records which response shape the normalizer matched.
func (m *Metrics) RecordShape(shape string) {
	m.ResponseShapes.WithLabelValues(shape).Inc()
}

// SetBreakerState publishes a breaker state.
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the running counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
