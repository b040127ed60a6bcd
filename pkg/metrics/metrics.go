// Package metrics exposes engine-internal counters as Prometheus
// collectors: pending request count, frames sent/received, reconnects,
// and last-known RTT (spec.md §9 design note: observability is ambient,
// not a protocol feature).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every gauge/counter the engine publishes. It has
// no methods of its own: callers update the exported collectors
// directly, so a nil *Collectors must not be dereferenced.
type Collectors struct {
	PendingRequests prometheus.Gauge
	FramesSent      prometheus.Counter
	FramesReceived  prometheus.Counter
	Reconnects      prometheus.Counter
	ActiveSubs      prometheus.Gauge
	LastRTTSeconds  prometheus.Gauge
}

// NewCollectors builds and registers a fresh set of collectors against
// reg. Pass prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to publish on the global one.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ventbridge",
			Name:      "pending_requests",
			Help:      "Number of RMI/session requests awaiting a reply.",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ventbridge",
			Name:      "frames_sent_total",
			Help:      "Total frames written to the bridge connection.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ventbridge",
			Name:      "frames_received_total",
			Help:      "Total frames read from the bridge connection.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ventbridge",
			Name:      "reconnects_total",
			Help:      "Total number of session reconnect attempts.",
		}),
		ActiveSubs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ventbridge",
			Name:      "active_pdo_subscriptions",
			Help:      "Number of currently active PDO subscriptions.",
		}),
		LastRTTSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ventbridge",
			Name:      "last_rtt_seconds",
			Help:      "Most recently observed TCP_INFO round-trip time.",
		}),
	}
	reg.MustRegister(c.PendingRequests, c.FramesSent, c.FramesReceived, c.Reconnects, c.ActiveSubs, c.LastRTTSeconds)
	return c
}
