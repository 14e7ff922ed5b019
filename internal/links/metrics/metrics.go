package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the link module.
type Metrics struct {
	LinksCreated prometheus.Counter
	LinksUpdated prometheus.Counter
	LinksDeleted prometheus.Counter
}

// New creates a new Metrics instance with all link module metrics registered.
func New() *Metrics {
	return &Metrics{
		LinksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrius_links_created_total",
			Help: "Total number of links created",
		}),
		LinksUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrius_links_updated_total",
			Help: "Total number of link mutations (destination or active flag)",
		}),
		LinksDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrius_links_deleted_total",
			Help: "Total number of links deleted",
		}),
	}
}

// IncrementCreated records a successful link creation.
func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.LinksCreated.Inc()
}

// IncrementUpdated records a successful link mutation.
func (m *Metrics) IncrementUpdated() {
	if m == nil {
		return
	}
	m.LinksUpdated.Inc()
}

// IncrementDeleted records a link deletion.
func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.LinksDeleted.Inc()
}
