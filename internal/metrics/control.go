// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics holds the Prometheus instruments of recctl.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command outcomes.
const (
	OutcomePosted    = "posted"
	OutcomeStatus    = "status"
	OutcomeUnhandled = "unhandled"
	OutcomeNotFound  = "not_found"
	OutcomeThrottled = "throttled"
)

var (
	controlConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recctl_control_connections_total",
		Help: "Total number of accepted control connections",
	})

	controlSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recctl_control_sessions_active",
		Help: "Number of currently open control sessions",
	})

	controlCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recctl_control_commands_total",
		Help: "Control lines processed by command and outcome",
	}, []string{"command", "outcome"}) // command=<verb>|unknown

	controlSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recctl_control_send_failures_total",
		Help: "Response lines dropped after exhausting send attempts",
	})

	controlAnnouncementsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recctl_control_announcements_dropped_total",
		Help: "State announcements discarded because the announce queue was full",
	})

	controlLinesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recctl_control_lines_dropped_total",
		Help: "Inbound lines discarded before dispatch",
	}, []string{"reason"}) // reason=too_long|throttled

	controlEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recctl_control_enabled",
		Help: "Whether the control endpoint is serving (1) or disabled (0)",
	})
)

// RecordConnectionOpened counts an accepted connection and tracks it as active.
func RecordConnectionOpened() {
	controlConnectionsTotal.Inc()
	controlSessionsActive.Inc()
}

// RecordConnectionClosed removes a connection from the active gauge.
func RecordConnectionClosed() {
	controlSessionsActive.Dec()
}

// RecordCommand counts one processed line. Unknown verbs are folded into
// a single label value to keep cardinality bounded.
func RecordCommand(command, outcome string) {
	if command == "" {
		command = "unknown"
	}
	controlCommandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordSendFailure counts a response line that could not be delivered.
func RecordSendFailure() {
	controlSendFailures.Inc()
}

// RecordAnnouncementDropped counts a broadcast that never got queued.
func RecordAnnouncementDropped() {
	controlAnnouncementsDropped.Inc()
}

// RecordLineDropped counts an inbound line discarded before dispatch.
func RecordLineDropped(reason string) {
	controlLinesDropped.WithLabelValues(reason).Inc()
}

// SetControlEnabled records whether the control endpoint is serving.
func SetControlEnabled(enabled bool) {
	if enabled {
		controlEnabled.Set(1)
		return
	}
	controlEnabled.Set(0)
}
