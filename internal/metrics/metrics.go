// Package metrics defines the Prometheus instrumentation for stream replay
// and the HTTP surface.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors the server updates.
type Metrics struct {
	StreamsBuilt  prometheus.Counter
	BuildFailures prometheus.Counter
	EventsApplied *prometheus.CounterVec
	ReplayEvents  prometheus.Histogram
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StreamsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loansplit_streams_built_total",
			Help: "Total number of event streams successfully replayed",
		}),

		BuildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loansplit_stream_build_failures_total",
			Help: "Total number of event stream replays that failed",
		}),

		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loansplit_events_applied_total",
			Help: "Total number of events applied during replay",
		}, []string{"source"}),

		ReplayEvents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loansplit_replay_events",
			Help:    "Number of events applied per stream replay",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		}),
	}

	reg.MustRegister(m.StreamsBuilt, m.BuildFailures, m.EventsApplied, m.ReplayEvents)
	return m
}

// ObserveReplay records the outcome of one stream construction.
func (m *Metrics) ObserveReplay(applied, system int, err error) {
	if err != nil {
		m.BuildFailures.Inc()
		return
	}
	m.StreamsBuilt.Inc()
	m.EventsApplied.WithLabelValues("user").Add(float64(applied - system))
	m.EventsApplied.WithLabelValues("system").Add(float64(system))
	m.ReplayEvents.Observe(float64(applied))
}
