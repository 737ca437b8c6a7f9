package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initNetworkMetrics() {
	r.SessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netbuilder_sessions_active",
			Help: "Number of open editing sessions",
		},
	)

	r.NetworkNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netbuilder_network_nodes",
			Help: "Nodes across all open editing sessions",
		},
	)

	r.NetworkLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netbuilder_network_links",
			Help: "Links across all open editing sessions",
		},
	)

	r.CommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuilder_commands_total",
			Help: "Editing commands by name and outcome (applied, rejected)",
		},
		[]string{"command", "status"},
	)

	r.CommandDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netbuilder_command_duration_seconds",
			Help:    "Time to apply a command and recompute derivations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"command"},
	)
}
