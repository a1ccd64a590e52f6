// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package event

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/bricks/pkg/brick"
)

// Status values for dispatch metrics.
const (
	StatusDelivered = "delivered"
	StatusUnrouted  = "unrouted"
	StatusFailed    = "failed"
)

// UnroutedEvent is the event label of dispatches outside the routed set.
const UnroutedEvent = "unrouted"

// EventsDispatched counts dispatch calls by event type and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var EventsDispatched = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bricks_events_dispatched_total",
		Help: "Total number of events dispatched",
	},
	[]string{"event", "status"},
)

// RegisterMetrics registers event metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsDispatched)
}

func recordDispatch(event brick.TypeID, status string) {
	EventsDispatched.WithLabelValues(string(event), status).Inc()
}

func recordUnrouted() {
	EventsDispatched.WithLabelValues(UnroutedEvent, StatusUnrouted).Inc()
}
