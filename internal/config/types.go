// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"net"
	"strconv"
	"time"
)

// AppConfig is the complete runtime configuration of the daemon.
type AppConfig struct {
	Version string `yaml:"-"`

	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	Control      ControlConfig      `yaml:"control"`
	Admin        AdminConfig        `yaml:"admin"`
	Recorder     RecorderConfig     `yaml:"recorder"`
	StateMachine StateMachineConfig `yaml:"stateMachine"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// ControlConfig configures the line-oriented TCP control endpoint.
// It is an immutable snapshot handed to the control server at construction.
type ControlConfig struct {
	Enabled                    bool   `yaml:"enabled"`
	BindHost                   string `yaml:"bindHost"`
	Port                       uint16 `yaml:"port"`
	IdleTimeMs                 int    `yaml:"idleTimeMs"`
	MaxWorkerThreads           int    `yaml:"maxWorkerThreads"`
	MaxSendAttempts            int    `yaml:"maxSendAttempts"`
	VerifyConnectionIntervalMs int    `yaml:"verifyConnectionIntervalMs"`

	// MaxConnections caps concurrently open sessions (0 = unlimited).
	MaxConnections int `yaml:"maxConnections"`
	// CommandRate is the per-session command budget per second (0 = unlimited).
	CommandRate  float64 `yaml:"commandRate"`
	CommandBurst int     `yaml:"commandBurst"`
	// AnnounceStateChanges broadcasts "Recorder-Status: <state>" to every
	// session whenever the state machine transitions.
	AnnounceStateChanges bool `yaml:"announceStateChanges"`
}

// ListenAddr returns the host:port the control server binds to.
func (c ControlConfig) ListenAddr() string {
	return net.JoinHostPort(c.BindHost, strconv.Itoa(int(c.Port)))
}

// IdleTime is the read poll interval of a session.
func (c ControlConfig) IdleTime() time.Duration {
	return time.Duration(c.IdleTimeMs) * time.Millisecond
}

// VerifyConnectionInterval is the TCP keep-alive period (0 = disabled).
func (c ControlConfig) VerifyConnectionInterval() time.Duration {
	return time.Duration(c.VerifyConnectionIntervalMs) * time.Millisecond
}

// WriteTimeout bounds a single send attempt.
func (c ControlConfig) WriteTimeout() time.Duration {
	d := 20 * c.IdleTime()
	if d < time.Second {
		d = time.Second
	}
	return d
}

// AdminConfig configures the HTTP side channel (health, readiness, metrics).
type AdminConfig struct {
	// ListenAddr is the admin listen address (empty disables the admin server).
	ListenAddr      string        `yaml:"listenAddr"`
	RequestsPerMin  int           `yaml:"requestsPerMinute"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Recorder source kinds.
const (
	RecorderSourceOpenWebIF = "openwebif"
	RecorderSourceFile      = "file"
	RecorderSourceNone      = "none"
)

// RecorderConfig configures the recorder-state provider.
type RecorderConfig struct {
	Source       string          `yaml:"source"`
	PollInterval time.Duration   `yaml:"pollInterval"`
	ScheduleFile string          `yaml:"scheduleFile"`
	Timezone     string          `yaml:"timezone"`
	OpenWebIF    OpenWebIFConfig `yaml:"openWebIF"`
}

// Location resolves Timezone, falling back to the process local zone.
func (r RecorderConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// OpenWebIFConfig configures the Enigma2 receiver client.
type OpenWebIFConfig struct {
	BaseURL          string        `yaml:"baseURL"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	Timeout          time.Duration `yaml:"timeout"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// StateMachineConfig configures the recording light state machine.
type StateMachineConfig struct {
	QueueSize int `yaml:"queueSize"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}
