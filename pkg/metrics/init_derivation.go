package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDerivationMetrics() {
	r.DerivationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netbuilder_derivation_duration_seconds",
			Help:    "Time to recompute the parameter graph and the specification",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)

	r.ParameterGraphSize = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netbuilder_parameter_graph_size",
			Help: "Last computed parameter graph size per session (0 when a node is unclassified)",
		},
		[]string{"session"},
	)

	r.UnsupportedShapesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuilder_unsupported_shapes_total",
			Help: "Derivations that met a component key missing from the factor table",
		},
		[]string{"key"},
	)
}
