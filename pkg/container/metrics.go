// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package container

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ComponentsActivated counts components constructed by Resolve.
// Use RegisterMetrics to register this with a Prometheus registry.
var ComponentsActivated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "bricks_components_activated_total",
		Help: "Total number of components activated by dependency resolution",
	},
)

// ResolutionPasses observes how many passes each Resolve call needed.
// Use RegisterMetrics to register this with a Prometheus registry.
var ResolutionPasses = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "bricks_resolution_passes",
		Help:    "Number of fixpoint passes per dependency resolution",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	},
)

// RegisterMetrics registers container metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ComponentsActivated)
	reg.MustRegister(ResolutionPasses)
}
