package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics counts auth operations by outcome. Replays get their own counter
// because a nonzero rate is the signal worth alerting on.
type metrics struct {
	attempts *prometheus.CounterVec
	replays  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatehouse",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Auth operations by operation and result.",
		}, []string{"op", "result"}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gatehouse",
			Subsystem: "auth",
			Name:      "refresh_replays_total",
			Help:      "Refresh attempts with a rotated or revoked token.",
		}),
	}

	reg.MustRegister(m.attempts, m.replays)
	return m
}

func (m *metrics) observe(op, result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(op, result).Inc()
}

func (m *metrics) observeReplay() {
	if m == nil {
		return
	}
	m.replays.Inc()
}
