package tracer

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "raytra"

// Metrics collects tracing counters. A nil *Metrics is valid and discards
// all observations.
type Metrics struct {
	raysTraced    prometheus.Counter
	rayHits       prometheus.Counter
	traceDuration prometheus.Histogram
}

// Create tracer metrics and register them with reg. If reg is nil the
// metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		raysTraced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rays_traced_total",
			Help:      "Counts primary rays tested against the BVH",
		}),
		rayHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ray_hits_total",
			Help:      "Counts primary rays that hit a surface",
		}),
		traceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "trace_duration_seconds",
			Help:      "Time spent tracing a full frame",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.raysTraced, m.rayHits, m.traceDuration)
	}
	return m
}

func (m *Metrics) observeFrame(stats *FrameStats) {
	if m == nil {
		return
	}
	m.raysTraced.Add(float64(stats.Rays))
	m.rayHits.Add(float64(stats.Hits))
	m.traceDuration.Observe(stats.TraceTime.Seconds())
}
