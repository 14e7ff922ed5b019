package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the redirect cache.
type Metrics struct {
	Hits           *prometheus.CounterVec
	Misses         *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance with all cache metrics registered.
func New() *Metrics {
	return &Metrics{
		Hits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrius_cache_hits_total",
			Help: "Redirect cache hits by entry type",
		}, []string{"entry"}),
		Misses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrius_cache_misses_total",
			Help: "Redirect cache misses by entry type",
		}, []string{"entry"}),
		LookupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qrius_cache_lookup_duration_seconds",
			Help:    "Latency of cache lookups (redirect critical path)",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}, []string{"entry"}),
	}
}

// RecordHit records a cache hit for the given entry type.
func (m *Metrics) RecordHit(entry string, start time.Time) {
	if m == nil {
		return
	}
	m.Hits.WithLabelValues(entry).Inc()
	m.LookupDuration.WithLabelValues(entry).Observe(time.Since(start).Seconds())
}

// RecordMiss records a cache miss for the given entry type.
func (m *Metrics) RecordMiss(entry string, start time.Time) {
	if m == nil {
		return
	}
	m.Misses.WithLabelValues(entry).Inc()
	m.LookupDuration.WithLabelValues(entry).Observe(time.Since(start).Seconds())
}
