// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recorderRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recctl_recorder_refresh_total",
		Help: "Recorder schedule refreshes by source and outcome",
	}, []string{"source", "outcome"}) // outcome=success|failure

	recorderRefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recctl_recorder_refresh_duration_seconds",
		Help:    "Duration of recorder schedule refreshes",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	recorderScheduleSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recctl_recorder_schedule_entries",
		Help: "Number of recordings in the last successful refresh",
	})

	stateMachineInputs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recctl_statemachine_inputs_total",
		Help: "State machine inputs by input and outcome",
	}, []string{"input", "outcome"}) // outcome=applied|ignored|dropped
)

// RecordRecorderRefresh records the outcome of one schedule refresh.
func RecordRecorderRefresh(source string, entries int, d time.Duration, err error) {
	recorderRefreshDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		recorderRefreshTotal.WithLabelValues(source, "failure").Inc()
		return
	}
	recorderRefreshTotal.WithLabelValues(source, "success").Inc()
	recorderScheduleSize.Set(float64(entries))
}

// RecordStateMachineInput counts an input by outcome.
func RecordStateMachineInput(input, outcome string) {
	stateMachineInputs.WithLabelValues(input, outcome).Inc()
}
