package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Methods are nil-safe so
// components can run without instrumentation in tests.
type Metrics struct {
	// Dispatched calls by method and final status code
	DispatchTotal *prometheus.CounterVec

	// Dispatch latency by method
	DispatchLatency *prometheus.HistogramVec

	// Store operations by op ("get", "set", "cache_get", "cache_set") and outcome
	StoreOps *prometheus.CounterVec

	// Score cache lookups by result ("hit", "fallback", "miss")
	CacheLookups *prometheus.CounterVec
}

// New creates and registers the metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		DispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreapi_dispatch_total",
			Help: "Total dispatched method calls by method and status code",
		}, []string{"method", "code"}),

		DispatchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoreapi_dispatch_duration_seconds",
			Help:    "Duration of method dispatch including store access",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method"}),

		StoreOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreapi_store_operations_total",
			Help: "Store operations by operation and outcome",
		}, []string{"op", "outcome"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreapi_cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveDispatch records one finished call.
func (m *Metrics) ObserveDispatch(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.DispatchTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.DispatchLatency.WithLabelValues(method).Observe(d.Seconds())
}

// IncrementStoreOp records a store operation outcome ("ok", "miss", "error").
func (m *Metrics) IncrementStoreOp(op, outcome string) {
	if m != nil {
		m.StoreOps.WithLabelValues(op, outcome).Inc()
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
