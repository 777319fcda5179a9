// Package telemetry exposes Prometheus metrics for the primitives.
// Counters register against the default registry; hosts that scrape
// metrics pick them up without extra wiring.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Focus trap metrics
	TrapActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tether",
			Subsystem: "focus",
			Name:      "trap_activations_total",
			Help:      "Total number of focus trap activations",
		},
		[]string{"result"},
	)

	TrapDeactivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tether",
			Subsystem: "focus",
			Name:      "trap_deactivations_total",
			Help:      "Total number of focus trap deactivations",
		},
		[]string{"reason"},
	)

	FocusWraps = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tether",
			Subsystem: "focus",
			Name:      "tab_wraps_total",
			Help:      "Total number of Tab wrap-arounds at a trap boundary",
		},
	)

	FocusRedirects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tether",
			Subsystem: "focus",
			Name:      "redirects_total",
			Help:      "Total number of focus redirects back inside a trap",
		},
	)

	// Toast metrics
	ToastsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tether",
			Subsystem: "toast",
			Name:      "shown_total",
			Help:      "Total number of toasts shown",
		},
		[]string{"level"},
	)

	ToastsDismissed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tether",
			Subsystem: "toast",
			Name:      "dismissed_total",
			Help:      "Total number of toasts dismissed",
		},
		[]string{"reason"},
	)
)

// Activation result labels.
const (
	ResultActivated     = "activated"
	ResultEmptyScope    = "empty_scope"
	ResultDuplicateRoot = "duplicate_root"
	ResultNoop          = "noop"
)

// Deactivation reason labels.
const (
	ReasonExplicit     = "explicit"
	ReasonDisconnected = "disconnected"
	ReasonEscape       = "escape"
)
