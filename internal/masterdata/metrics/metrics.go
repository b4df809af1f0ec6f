// Package metrics exposes Prometheus metrics for master-data operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the master-data counters, labelled by module so one set
// covers every entity type.
type Metrics struct {
	RecordsCreated  *prometheus.CounterVec
	RecordsUpdated  *prometheus.CounterVec
	RecordsDeleted  *prometheus.CounterVec
	DeleteConflicts *prometheus.CounterVec
}

// New creates and registers the master-data metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on a caller-supplied registry; tests pass a fresh one to
// avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masterdata_records_created_total",
			Help: "Master-data records created, by module.",
		}, []string{"module"}),
		RecordsUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masterdata_records_updated_total",
			Help: "Master-data records updated, by module.",
		}, []string{"module"}),
		RecordsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masterdata_records_deleted_total",
			Help: "Master-data records soft-deleted, by module.",
		}, []string{"module"}),
		DeleteConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masterdata_delete_conflicts_total",
			Help: "Deletes blocked by referential validation, by module.",
		}, []string{"module"}),
	}
}
