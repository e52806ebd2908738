package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client-side Prometheus metrics for IssueHub.
// All Observe* methods are safe on a nil receiver so callers can leave
// metrics unset.
type Metrics struct {
	// Transport metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	NetworkFailures *prometheus.CounterVec
	Unauthorized    prometheus.Counter

	// Session metrics
	SessionTransitions *prometheus.CounterVec

	// Error metrics (by structured error code)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehub_api_requests_total",
				Help: "Total number of API requests that received a response",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "issuehub_api_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "route"},
		),
		NetworkFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehub_api_network_failures_total",
				Help: "Total number of API requests that never received a response",
			},
			[]string{"method", "route"},
		),
		Unauthorized: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "issuehub_api_unauthorized_total",
				Help: "Total number of 401 responses that purged the stored token",
			},
		),
		SessionTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehub_session_transitions_total",
				Help: "Total number of session status transitions",
			},
			[]string{"status"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehub_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// ObserveRequest records a request that received a response
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	route := RouteLabel(path)
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveNetworkFailure records a request that got no response
func (m *Metrics) ObserveNetworkFailure(method, path string) {
	if m == nil {
		return
	}
	m.NetworkFailures.WithLabelValues(method, RouteLabel(path)).Inc()
}

// ObserveUnauthorized records a 401 token purge
func (m *Metrics) ObserveUnauthorized() {
	if m == nil {
		return
	}
	m.Unauthorized.Inc()
}

// ObserveSession records a session status transition
func (m *Metrics) ObserveSession(status string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(status).Inc()
}

// ObserveError records a coded error
func (m *Metrics) ObserveError(code, component string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}

// RouteLabel collapses numeric path segments and drops the query so that
// "/issues/42?x=1" and "/issues/7" share the label "/issues/{id}".
func RouteLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
