package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBroadcastMetrics() {
	r.BroadcastFramesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuilder_broadcast_frames_total",
			Help: "Report frames published to display subscribers",
		},
		[]string{"status"},
	)

	r.BroadcastBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuilder_broadcast_bytes_total",
			Help: "Bytes published, by payload encoding",
		},
		[]string{"encoding"},
	)
}
