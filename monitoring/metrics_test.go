package monitoring_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-ui/sprig/monitoring"
)

func TestNoOpMetrics_DiscardsEverythingWithoutPanicking(t *testing.T) {
	var m monitoring.ComposableMetrics = monitoring.NoOpMetrics{}
	assert.NotPanics(t, func() {
		m.EffectFlushed("x", time.Millisecond)
		m.CycleDetected()
		m.StoreResolved("user", true, time.Millisecond)
		m.TokenResolved("svc#1", time.Millisecond, false)
		m.ModuleBootstrapped("root", time.Millisecond)
	})
}

func TestDefault_FallsBackToNoOpAndRoundTripsSetDefault(t *testing.T) {
	original := monitoring.Default()
	defer monitoring.SetDefault(original)

	reg := prometheus.NewRegistry()
	m, err := monitoring.NewPrometheusMetrics(reg)
	require.NoError(t, err)

	monitoring.SetDefault(m)
	assert.Same(t, m, monitoring.Default())

	monitoring.SetDefault(nil)
	assert.IsType(t, monitoring.NoOpMetrics{}, monitoring.Default())
}

func TestPrometheusMetrics_RecordsStoreResolution(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := monitoring.NewPrometheusMetrics(reg)
	require.NoError(t, err)

	m.StoreResolved("user", false, 2*time.Millisecond)
	m.StoreResolved("user", true, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "sprig_store_resolutions_total" {
			found = f
		}
	}
	require.NotNil(t, found, "expected sprig_store_resolutions_total to be registered")
	assert.Len(t, found.Metric, 2, "cached=true and cached=false are distinct label combinations")
}

func TestPrometheusMetrics_RecordsCycleDetected(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := monitoring.NewPrometheusMetrics(reg)
	require.NoError(t, err)

	m.CycleDetected()
	m.CycleDetected()

	families, err := reg.Gather()
	require.NoError(t, err)

	var count float64
	for _, f := range families {
		if f.GetName() == "sprig_reactive_cycles_detected_total" {
			count = f.Metric[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), count)
}
