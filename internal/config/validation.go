// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/recctl/internal/validate"
	"github.com/rs/zerolog"
)

// Validate checks every section that must be valid for the process to run.
// The control section is intentionally excluded; see ValidateControl.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
			v.AddError("LogLevel", err.Error(), cfg.LogLevel)
		}
	}

	v.Range("Admin.RequestsPerMin", cfg.Admin.RequestsPerMin, 0, 100000)
	v.PositiveDuration("Admin.ShutdownTimeout", cfg.Admin.ShutdownTimeout)

	r := cfg.Recorder
	v.OneOf("Recorder.Source", r.Source, []string{RecorderSourceOpenWebIF, RecorderSourceFile, RecorderSourceNone})
	v.PositiveDuration("Recorder.PollInterval", r.PollInterval)
	switch r.Source {
	case RecorderSourceOpenWebIF:
		v.URL("Recorder.OpenWebIF.BaseURL", r.OpenWebIF.BaseURL, []string{"http", "https"})
		v.PositiveDuration("Recorder.OpenWebIF.Timeout", r.OpenWebIF.Timeout)
		v.Positive("Recorder.OpenWebIF.BreakerThreshold", r.OpenWebIF.BreakerThreshold)
	case RecorderSourceFile:
		v.NotEmpty("Recorder.ScheduleFile", r.ScheduleFile)
	}
	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			v.AddError("Recorder.Timezone", err.Error(), r.Timezone)
		}
	}

	v.Range("StateMachine.QueueSize", cfg.StateMachine.QueueSize, 1, 65536)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.ExporterType", cfg.Telemetry.ExporterType, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.Fraction("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate)
	}

	return v.Err()
}

// ValidateControl checks the control section. The control server calls it at
// start and degrades to disabled on error.
func ValidateControl(c ControlConfig) error {
	v := validate.New()
	v.Port("Control.Port", int(c.Port))
	v.Range("Control.IdleTimeMs", c.IdleTimeMs, 1, 60000)
	v.Range("Control.MaxWorkerThreads", c.MaxWorkerThreads, 1, 10000)
	v.Range("Control.MaxSendAttempts", c.MaxSendAttempts, 1, 100)
	v.NonNegative("Control.VerifyConnectionIntervalMs", c.VerifyConnectionIntervalMs)
	v.NonNegative("Control.MaxConnections", c.MaxConnections)
	if c.CommandRate < 0 {
		v.AddError("Control.CommandRate", "value cannot be negative", c.CommandRate)
	}
	if c.CommandRate > 0 {
		v.Positive("Control.CommandBurst", c.CommandBurst)
	}
	return v.Err()
}
