// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package loader

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/bricks/pkg/container"
	"github.com/holomush/bricks/pkg/event"
)

// Load modes used as metric label values.
const (
	ModeFresh  = "fresh"
	ModeCached = "cached"
	ModeDir    = "dir"
)

var (
	// LoadDuration observes the duration of load operations by mode.
	LoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bricks_load_duration_seconds",
			Help:    "Duration of brick load operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// BricksLoaded is the number of bricks in the registry after the last load.
	BricksLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bricks_loaded",
		Help: "Number of bricks in the registry",
	})
)

// RegisterMetrics registers loader metrics, together with the container and
// event metrics the loader drives, with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoadDuration, BricksLoaded)
	container.RegisterMetrics(reg)
	event.RegisterMetrics(reg)
}
