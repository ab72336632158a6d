// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

const (
	defaultControlPort      = 3000
	defaultIdleTimeMs       = 50
	defaultMaxWorkerThreads = 100
	defaultMaxSendAttempts  = 3
	defaultPollInterval     = 30 * time.Second
	defaultOWITimeout       = 10 * time.Second
	defaultQueueSize        = 64
)

// DefaultConfig returns the configuration used when neither a file nor
// environment variables override a value.
func DefaultConfig() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "recctl",
		Control: ControlConfig{
			Enabled:                    true,
			Port:                       defaultControlPort,
			IdleTimeMs:                 defaultIdleTimeMs,
			MaxWorkerThreads:           defaultMaxWorkerThreads,
			MaxSendAttempts:            defaultMaxSendAttempts,
			VerifyConnectionIntervalMs: 0,
			CommandBurst:               10,
		},
		Admin: AdminConfig{
			ListenAddr:      "",
			RequestsPerMin:  120,
			ShutdownTimeout: 15 * time.Second,
		},
		Recorder: RecorderConfig{
			Source:       RecorderSourceNone,
			PollInterval: defaultPollInterval,
			OpenWebIF: OpenWebIFConfig{
				Timeout:          defaultOWITimeout,
				BreakerThreshold: 5,
				BreakerReset:     30 * time.Second,
			},
		},
		StateMachine: StateMachineConfig{
			QueueSize: defaultQueueSize,
		},
		Telemetry: TelemetryConfig{
			ExporterType: "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}
