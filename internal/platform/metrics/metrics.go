package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CodesAllocated       *prometheus.CounterVec
	AllocationConflicts  *prometheus.CounterVec
	AllocationExhausted  *prometheus.CounterVec
	AllocationAttempts   *prometheus.HistogramVec
	HTTPRequestDurations *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics against a specific registerer. Tests pass a fresh
// registry to avoid duplicate registration across suites.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CodesAllocated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_codes_allocated_total",
			Help: "Codes successfully allocated, by entity kind.",
		}, []string{"entity"}),
		AllocationConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_allocation_conflicts_total",
			Help: "Unique-index collisions absorbed by the allocation retry loop.",
		}, []string{"entity"}),
		AllocationExhausted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_allocation_exhausted_total",
			Help: "Allocations that hit the retry bound and failed.",
		}, []string{"entity"}),
		AllocationAttempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "servicedesk_allocation_attempts",
			Help:    "Attempts needed per successful allocation.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}, []string{"entity"}),
		HTTPRequestDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "servicedesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
