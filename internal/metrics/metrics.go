// Package metrics exposes inventory and ledger counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockroom"

// Outcome labels.
const (
	OutcomeOK = "ok"
)

// Recorder owns a private registry so tests and multiple servers in one
// process do not collide on the default one. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	admissions   *prometheus.CounterVec
	allocations  *prometheus.CounterVec
	releases     *prometheus.CounterVec
	ledgerErrors *prometheus.CounterVec
	compensation *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Barcode admission attempts by outcome.",
		}, []string{"outcome"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Order and sale allocation attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_released_total",
			Help:      "Units returned to stock by edits and cancellations.",
		}, []string{"kind"}),
		ledgerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_sync_failures_total",
			Help:      "Ledger synchronisations that failed after the order was committed.",
		}, []string{"kind", "op"}),
		compensation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Compensating writes issued after a partial failure, by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.admissions,
		r.allocations,
		r.releases,
		r.ledgerErrors,
		r.compensation,
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Admission(outcome string) {
	if r == nil {
		return
	}

	r.admissions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Allocation(kind, outcome string) {
	if r == nil {
		return
	}

	r.allocations.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) Released(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}

	r.releases.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) LedgerFailure(kind, op string) {
	if r == nil {
		return
	}

	r.ledgerErrors.WithLabelValues(kind, op).Inc()
}

func (r *Recorder) Compensation(ok bool) {
	if r == nil {
		return
	}

	result := "ok"
	if !ok {
		result = "failed"
	}

	r.compensation.WithLabelValues(result).Inc()
}
