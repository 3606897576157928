package graphom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation counters, registered on the default prometheus registry.
var (
	edgesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphom",
		Name:      "edges_created_total",
		Help:      "Edges created through relationship views.",
	}, []string{"type"})

	edgesDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphom",
		Name:      "edges_deleted_total",
		Help:      "Edges deleted through relationship views.",
	}, []string{"type"})

	indexUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphom",
		Name:      "index_updates_total",
		Help:      "Index entries written or removed.",
	}, []string{"op"})

	listRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "graphom",
		Name:      "list_repairs_total",
		Help:      "Ordered-list chains repaired after out-of-band node deletion.",
	})
)
