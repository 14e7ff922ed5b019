package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the domain module.
type Metrics struct {
	DomainsCreated  *prometheus.CounterVec
	DomainsVerified prometheus.Counter
	DomainsDeleted  prometheus.Counter
	VerifyDuration  prometheus.Histogram
	ProviderErrors  *prometheus.CounterVec
}

// New creates a new Metrics instance with all domain module metrics registered.
func New() *Metrics {
	return &Metrics{
		DomainsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrius_domains_created_total",
			Help: "Total number of domains created, by type",
		}, []string{"type"}),
		DomainsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrius_domains_verified_total",
			Help: "Total number of domains that reached verified status",
		}),
		DomainsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrius_domains_deleted_total",
			Help: "Total number of domains deleted",
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "qrius_domain_verify_duration_seconds",
			Help:    "Duration of verify operations including the provider check",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrius_domain_provider_errors_total",
			Help: "Hosting provider call failures, by operation",
		}, []string{"operation"}),
	}
}

// IncrementCreated records a successful domain creation.
func (m *Metrics) IncrementCreated(domainType string) {
	if m == nil {
		return
	}
	m.DomainsCreated.WithLabelValues(domainType).Inc()
}

// IncrementVerified records a domain reaching verified status.
func (m *Metrics) IncrementVerified() {
	if m == nil {
		return
	}
	m.DomainsVerified.Inc()
}

// IncrementDeleted records a domain deletion.
func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.DomainsDeleted.Inc()
}

// ObserveVerify records the duration of a verify operation.
func (m *Metrics) ObserveVerify(start time.Time) {
	if m == nil {
		return
	}
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}

// IncrementProviderError records a failed provider call.
func (m *Metrics) IncrementProviderError(operation string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(operation).Inc()
}
