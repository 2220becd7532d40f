// Package metrics defines the custom Prometheus metrics of the portal API.
// Metrics register with the default registry on package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Gate ──────────────────────────────────────────────────────────────────────

// GateDecisionsTotal counts request gate outcomes.
// Label:
//   - decision: "admitted", "banned" or "too_large"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of requests seen by the gate, by decision.",
	},
	[]string{"decision"},
)

// ── Sessions ──────────────────────────────────────────────────────────────────

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "success", "failed", "throttled" or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

var SignOutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signouts_total",
		Help:      "Total number of sessions ended by sign-out.",
	},
)

// ── Registration ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration handshake steps.
// Labels:
//   - step: "begin" or "confirm"
//   - result: "success" or a short failure reason
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration steps, by step and result.",
	},
	[]string{"step", "result"},
)

// ── Settings ──────────────────────────────────────────────────────────────────

// SettingsUpdatesTotal counts successful settings changes.
// Label:
//   - setting: theme, class_, grade, search, iframe, password, newsletter, favorites
var SettingsUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_updates_total",
		Help:      "Total number of account settings updates, by setting.",
	},
	[]string{"setting"},
)
