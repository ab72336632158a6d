// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, current string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, current)
}

func (l *Loader) envBool(key string, current bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, current)
}

func (l *Loader) envInt(key string, current int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, current)
}

func (l *Loader) envDuration(key string, current time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, current)
}

func (l *Loader) envFloat(key string, current float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, current)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The control section is not validated here: a bad control section disables
// the control endpoint at start instead of failing the process.
func (l *Loader) Load() (AppConfig, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause an error to prevent silent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, cfg *AppConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

// mergeEnvConfig applies RECCTL_* environment overrides on top of cfg.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString("RECCTL_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("RECCTL_LOG_SERVICE", cfg.LogService)

	c := &cfg.Control
	c.Enabled = l.envBool("RECCTL_CONTROL_ENABLED", c.Enabled)
	c.BindHost = l.envString("RECCTL_CONTROL_BIND", c.BindHost)
	if port := l.envInt("RECCTL_CONTROL_PORT", int(c.Port)); port >= 0 && port <= 65535 {
		c.Port = uint16(port)
	} else {
		// Out of range: leave the port zeroed so the control server
		// refuses to start and degrades to disabled.
		c.Port = 0
	}
	c.IdleTimeMs = l.envInt("RECCTL_CONTROL_IDLE_TIME_MS", c.IdleTimeMs)
	c.MaxWorkerThreads = l.envInt("RECCTL_CONTROL_MAX_WORKERS", c.MaxWorkerThreads)
	c.MaxSendAttempts = l.envInt("RECCTL_CONTROL_MAX_SEND_ATTEMPTS", c.MaxSendAttempts)
	c.VerifyConnectionIntervalMs = l.envInt("RECCTL_CONTROL_VERIFY_INTERVAL_MS", c.VerifyConnectionIntervalMs)
	c.MaxConnections = l.envInt("RECCTL_CONTROL_MAX_CONNECTIONS", c.MaxConnections)
	c.CommandRate = l.envFloat("RECCTL_CONTROL_COMMAND_RATE", c.CommandRate)
	c.CommandBurst = l.envInt("RECCTL_CONTROL_COMMAND_BURST", c.CommandBurst)
	c.AnnounceStateChanges = l.envBool("RECCTL_CONTROL_ANNOUNCE", c.AnnounceStateChanges)

	cfg.Admin.ListenAddr = l.envString("RECCTL_ADMIN_LISTEN", cfg.Admin.ListenAddr)
	cfg.Admin.RequestsPerMin = l.envInt("RECCTL_ADMIN_REQUESTS_PER_MINUTE", cfg.Admin.RequestsPerMin)
	cfg.Admin.ShutdownTimeout = l.envDuration("RECCTL_ADMIN_SHUTDOWN_TIMEOUT", cfg.Admin.ShutdownTimeout)

	r := &cfg.Recorder
	r.Source = strings.ToLower(l.envString("RECCTL_RECORDER_SOURCE", r.Source))
	r.PollInterval = l.envDuration("RECCTL_RECORDER_POLL_INTERVAL", r.PollInterval)
	r.ScheduleFile = l.envString("RECCTL_SCHEDULE_FILE", r.ScheduleFile)
	r.Timezone = l.envString("RECCTL_TIMEZONE", r.Timezone)
	r.OpenWebIF.BaseURL = l.envString("RECCTL_OWI_BASE", r.OpenWebIF.BaseURL)
	r.OpenWebIF.Username = l.envString("RECCTL_OWI_USER", r.OpenWebIF.Username)
	r.OpenWebIF.Password = l.envString("RECCTL_OWI_PASS", r.OpenWebIF.Password)
	r.OpenWebIF.Timeout = l.envDuration("RECCTL_OWI_TIMEOUT", r.OpenWebIF.Timeout)

	cfg.StateMachine.QueueSize = l.envInt("RECCTL_SM_QUEUE_SIZE", cfg.StateMachine.QueueSize)

	t := &cfg.Telemetry
	t.Enabled = l.envBool("RECCTL_TELEMETRY_ENABLED", t.Enabled)
	t.ExporterType = l.envString("RECCTL_TELEMETRY_EXPORTER", t.ExporterType)
	t.Endpoint = l.envString("RECCTL_TELEMETRY_ENDPOINT", t.Endpoint)
	t.SamplingRate = l.envFloat("RECCTL_TELEMETRY_SAMPLING", t.SamplingRate)
	t.Environment = l.envString("RECCTL_TELEMETRY_ENVIRONMENT", t.Environment)
}

// LoadFile loads a YAML config file over the defaults without env overrides.
func LoadFile(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	err := NewLoader(path, "").loadFile(path, &cfg)
	return cfg, err
}
