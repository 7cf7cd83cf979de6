package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanewayhq/laneway/engine"
)

func TestPrometheusMetrics_ImplementsInterface(t *testing.T) {
	var _ engine.Metrics = (*PrometheusMetrics)(nil)
}

func TestPrometheusMetrics_MetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "laneway")

	id := engine.DerivedId{}
	m.RevisionAdvanced(1)
	m.DerivedHit(id)
	m.DerivedRevalidated(id)
	m.DerivedRecomputed(id)
	m.DerivedEarlyExit(id)
	m.ActiveComputations(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.GetName()
	}

	for _, expected := range []string{
		"laneway_revision_total",
		"laneway_derived_hits_total",
		"laneway_derived_revalidated_total",
		"laneway_derived_recomputed_total",
		"laneway_derived_early_exit_total",
		"laneway_active_computations",
	} {
		assert.Contains(t, names, expected)
	}
}

func TestPrometheusMetrics_RevisionGaugeTracksLatestValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "laneway")

	m.RevisionAdvanced(1)
	m.RevisionAdvanced(5)

	families, err := reg.Gather()
	require.NoError(t, err)

	var gauge float64
	for _, f := range families {
		if f.GetName() == "laneway_revision_total" {
			gauge = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, float64(5), gauge)
}

func TestPrometheusMetrics_CustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg, "myapp")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.GetName()
	}
	assert.Contains(t, names, "myapp_revision_total")
}

func TestPrometheusMetrics_EmptyNamespaceFallsBackToLaneway(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg, "")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.GetName()
	}
	assert.Contains(t, names, "laneway_revision_total")
}
