package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements ComposableMetrics on top of client_golang
// collectors, registered against whatever prometheus.Registerer the
// caller passes in (typically prometheus.DefaultRegisterer).
type PrometheusMetrics struct {
	effectDuration      *prometheus.HistogramVec
	cyclesDetected      prometheus.Counter
	storeResolutions    *prometheus.CounterVec
	storeResolveLatency *prometheus.HistogramVec
	tokenResolveLatency *prometheus.HistogramVec
	moduleBootstrapTime *prometheus.HistogramVec
}

// NewPrometheusMetrics creates and registers the core's collectors against
// reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		effectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sprig",
			Subsystem: "reactive",
			Name:      "effect_duration_seconds",
			Help:      "Duration of individual effect runs during a scheduler flush.",
		}, []string{"label"}),
		cyclesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sprig",
			Subsystem: "reactive",
			Name:      "cycles_detected_total",
			Help:      "Number of times the scheduler aborted a flush on the cycle-guard bound.",
		}),
		storeResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sprig",
			Subsystem: "store",
			Name:      "resolutions_total",
			Help:      "Number of UseStore resolutions, labeled by store id and whether it hit the cache.",
		}, []string{"id", "cached"}),
		storeResolveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sprig",
			Subsystem: "store",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of store resolution, including first-access factory calls.",
		}, []string{"id"}),
		tokenResolveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sprig",
			Subsystem: "di",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of DI token resolutions made through app-owned containers.",
		}, []string{"token", "failed"}),
		moduleBootstrapTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sprig",
			Subsystem: "module",
			Name:      "bootstrap_duration_seconds",
			Help:      "Duration of a single module's self-bootstrap step.",
		}, []string{"id"}),
	}

	collectors := []prometheus.Collector{
		m.effectDuration, m.cyclesDetected, m.storeResolutions,
		m.storeResolveLatency, m.tokenResolveLatency, m.moduleBootstrapTime,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) EffectFlushed(label string, duration time.Duration) {
	m.effectDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) CycleDetected() {
	m.cyclesDetected.Inc()
}

func (m *PrometheusMetrics) StoreResolved(id string, cached bool, duration time.Duration) {
	cachedLabel := "false"
	if cached {
		cachedLabel = "true"
	}
	m.storeResolutions.WithLabelValues(id, cachedLabel).Inc()
	m.storeResolveLatency.WithLabelValues(id).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) TokenResolved(tokenID string, duration time.Duration, failed bool) {
	failedLabel := "false"
	if failed {
		failedLabel = "true"
	}
	m.tokenResolveLatency.WithLabelValues(tokenID, failedLabel).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ModuleBootstrapped(id string, duration time.Duration) {
	m.moduleBootstrapTime.WithLabelValues(id).Observe(duration.Seconds())
}
