// Package metrics expone los contadores del dominio vía Prometheus.
// Cada router crea su propio registry para no colisionar en tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livestock"

type Metrics struct {
	registry *prometheus.Registry

	MovementsRecorded     *prometheus.CounterVec
	GenealogyBuilds       *prometheus.CounterVec
	OwnershipReplacements prometheus.Counter
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		MovementsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_recorded_total",
			Help:      "Movements appended to the ledger, by entity type.",
		}, []string{"entity"}),
		GenealogyBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genealogy_builds_total",
			Help:      "Genealogy traversals, by result.",
		}, []string{"result"}),
		OwnershipReplacements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ownership_replacements_total",
			Help:      "Committed owner-set replacements.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status.",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.MovementsRecorded,
		m.GenealogyBuilds,
		m.OwnershipReplacements,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Los helpers toleran receptor nil: los servicios pueden correr sin métricas.

func (m *Metrics) MovementRecorded(entity string) {
	if m == nil {
		return
	}
	m.MovementsRecorded.WithLabelValues(entity).Inc()
}

func (m *Metrics) GenealogyBuilt(result string) {
	if m == nil {
		return
	}
	m.GenealogyBuilds.WithLabelValues(result).Inc()
}

func (m *Metrics) OwnershipReplaced() {
	if m == nil {
		return
	}
	m.OwnershipReplacements.Inc()
}
