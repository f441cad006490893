package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the cross-tenant orchestration core.
type Metrics struct {
	SharingAttempts      *prometheus.CounterVec
	PublicationsSent     prometheus.Counter
	AffiliationsCreated  prometheus.Counter
	AffiliationFailures  prometheus.Counter
	SyncBatchesProcessed prometheus.Counter
}

// New creates a new Metrics instance with all orchestration metrics registered.
func New() *Metrics {
	return &Metrics{
		SharingAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consortia_sharing_attempts_total",
			Help: "Instance sharing attempts by terminal status",
		}, []string{"status"}),
		PublicationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consortia_publications_submitted_total",
			Help: "Publication batches submitted to the coordinator",
		}),
		AffiliationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consortia_primary_affiliations_created_total",
			Help: "Primary affiliations created by the sync engine",
		}),
		AffiliationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consortia_primary_affiliation_failures_total",
			Help: "Per-user failures during affiliation batch processing",
		}),
		SyncBatchesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consortia_sync_batches_total",
			Help: "Primary affiliation sync batches processed",
		}),
	}
}

// ObserveSharingAttempt records one sharing attempt outcome.
func (m *Metrics) ObserveSharingAttempt(status string) {
	m.SharingAttempts.WithLabelValues(status).Inc()
}
