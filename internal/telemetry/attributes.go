// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Control protocol attributes
	ControlSessionKey = "control.session_id"
	ControlRemoteKey  = "control.remote_addr"
	ControlCommandKey = "control.command"
	ControlActionKey  = "control.action"
	ControlInputKey   = "control.input"
	ControlLinesKey   = "control.response_lines"

	// Recorder attributes
	RecorderSourceKey  = "recorder.source"
	RecorderEntriesKey = "recorder.entries"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// SessionAttributes identifies a control session on a span.
func SessionAttributes(sessionID, remote string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(ControlSessionKey, sessionID))
	}
	if remote != "" {
		attrs = append(attrs, attribute.String(ControlRemoteKey, remote))
	}
	return attrs
}

// CommandAttributes describes one dispatched command.
func CommandAttributes(command, action, input string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ControlCommandKey, command),
		attribute.String(ControlActionKey, action),
	}
	if input != "" {
		attrs = append(attrs, attribute.String(ControlInputKey, input))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(err error, errorType string) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

// StatusAttributes records how many lines a status report produced.
func StatusAttributes(lines int) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Int(ControlLinesKey, lines)}
}
