// Package metrics wires optional Prometheus instrumentation into the
// connection and retry layers, grounded on the exporter-registration
// pattern used elsewhere in the corpus for per-subsystem counters and
// gauges (connection counts, byte counters) registered against a single
// prometheus.Registerer at construction time.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds every counter and gauge dynet exposes. A nil *Registry is
// valid everywhere it is accepted: callers that don't want metrics simply
// don't construct one, and every call site nil-checks before use.
type Registry struct {
	PacketsSent     prometheus.Counter
	PacketsRead     prometheus.Counter
	Resyncs         prometheus.Counter
	Reconnects      prometheus.Counter
	ConnectFailures prometheus.Counter
	RetriesFired    prometheus.Counter
	BackoffSeconds  prometheus.Gauge
}

// New builds a Registry and registers every metric against reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynet",
			Name:      "packets_sent_total",
			Help:      "Packets written to the DyNet TCP connection.",
		}),
		PacketsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynet",
			Name:      "packets_read_total",
			Help:      "Packets decoded from the DyNet TCP connection.",
		}),
		Resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynet",
			Name:      "resyncs_total",
			Help:      "Single-byte resync steps taken after a checksum mismatch or a non-sync byte.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynet",
			Name:      "reconnects_total",
			Help:      "Successful TCP connects, including the first.",
		}),
		ConnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynet",
			Name:      "connect_failures_total",
			Help:      "Failed TCP connect attempts.",
		}),
		RetriesFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynet",
			Name:      "retries_fired_total",
			Help:      "Retry timers that fired and resent a request.",
		}),
		BackoffSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dynet",
			Name:      "reconnect_backoff_seconds",
			Help:      "Current reconnect backoff delay.",
		}),
	}
	reg.MustRegister(
		r.PacketsSent, r.PacketsRead, r.Resyncs, r.Reconnects,
		r.ConnectFailures, r.RetriesFired, r.BackoffSeconds,
	)
	return r
}
