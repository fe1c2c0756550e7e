package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks dispatcher activity.
type Metrics struct {
	Events            *prometheus.CounterVec
	BroadcastFailures prometheus.Counter
	ConnectedPlayers  prometheus.Gauge
}

// NewMetrics registers game metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trivia_events_total",
			Help: "Inbound events handled by the dispatcher, by event name.",
		}, []string{"event"}),
		BroadcastFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "trivia_broadcast_failures_total",
			Help: "Outbound pushes that failed (closed connection or full queue).",
		}),
		ConnectedPlayers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trivia_connected_players",
			Help: "Players currently registered on a live connection.",
		}),
	}
}
