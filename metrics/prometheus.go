// Package metrics provides a Prometheus-backed implementation of
// engine.Metrics, exposing cache-level counters for scraping.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lanewayhq/laneway/engine"
)

// PrometheusMetrics implements engine.Metrics using Prometheus for metric
// collection. Metric names are prefixed with the namespace passed to
// NewPrometheusMetrics (config.Config.MetricsNamespace, "laneway" by
// default) to avoid naming conflicts with other collectors registered on
// the same registry.
//
// Metrics exposed (namespace "laneway"):
//   - laneway_revision_total: the current revision, as a gauge
//   - laneway_derived_hits_total: cache hits, by derived function name
//   - laneway_derived_revalidated_total: validity-walk passes that did
//     not recompute, by derived function name
//   - laneway_derived_recomputed_total: recomputations that installed a
//     new value, by derived function name (early exits are counted only
//     in laneway_derived_early_exit_total)
//   - laneway_derived_early_exit_total: recomputations whose result was
//     equal to the cached value, by derived function name
//   - laneway_active_computations: the current nesting depth of
//     in-flight derived computations, as a gauge
//
// Thread-safe: all Prometheus collectors are thread-safe by design.
type PrometheusMetrics struct {
	revision           prometheus.Gauge
	derivedHits        *prometheus.CounterVec
	derivedRevalidated *prometheus.CounterVec
	derivedRecomputed  *prometheus.CounterVec
	derivedEarlyExit   *prometheus.CounterVec
	activeComputations prometheus.Gauge
}

var _ engine.Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a new Prometheus metrics collector,
// prefixing every metric name with namespace (an empty namespace falls
// back to "laneway"), and registers all metrics against reg. As with the
// rest of this stack's fail-fast registration convention, a duplicate
// registration panics rather than being silently ignored.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = "laneway"
	}
	name := func(suffix string) string { return fmt.Sprintf("%s_%s", namespace, suffix) }

	revision := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name("revision_total"),
		Help: "Current revision of the engine's revision clock.",
	})
	derivedHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name("derived_hits_total"),
		Help: "Total number of fresh-cache-entry hits, partitioned by derived function.",
	}, []string{"derived"})
	derivedRevalidated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name("derived_revalidated_total"),
		Help: "Total number of validity walks that confirmed an entry without recomputing it, partitioned by derived function.",
	}, []string{"derived"})
	derivedRecomputed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name("derived_recomputed_total"),
		Help: "Total number of derived function recomputations that installed a new value, partitioned by derived function.",
	}, []string{"derived"})
	derivedEarlyExit := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name("derived_early_exit_total"),
		Help: "Total number of recomputations whose result equaled the cached value, partitioned by derived function.",
	}, []string{"derived"})
	activeComputations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name("active_computations"),
		Help: "Current number of in-flight derived computations.",
	})

	reg.MustRegister(revision, derivedHits, derivedRevalidated, derivedRecomputed, derivedEarlyExit, activeComputations)

	return &PrometheusMetrics{
		revision:           revision,
		derivedHits:        derivedHits,
		derivedRevalidated: derivedRevalidated,
		derivedRecomputed:  derivedRecomputed,
		derivedEarlyExit:   derivedEarlyExit,
		activeComputations: activeComputations,
	}
}

func (pm *PrometheusMetrics) RevisionAdvanced(rev engine.Revision) {
	pm.revision.Set(float64(rev))
}

func (pm *PrometheusMetrics) DerivedHit(id engine.DerivedId) {
	pm.derivedHits.WithLabelValues(id.String()).Inc()
}

func (pm *PrometheusMetrics) DerivedRevalidated(id engine.DerivedId) {
	pm.derivedRevalidated.WithLabelValues(id.String()).Inc()
}

func (pm *PrometheusMetrics) DerivedRecomputed(id engine.DerivedId) {
	pm.derivedRecomputed.WithLabelValues(id.String()).Inc()
}

func (pm *PrometheusMetrics) DerivedEarlyExit(id engine.DerivedId) {
	pm.derivedEarlyExit.WithLabelValues(id.String()).Inc()
}

func (pm *PrometheusMetrics) ActiveComputations(n int) {
	pm.activeComputations.Set(float64(n))
}
