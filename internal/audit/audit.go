// SPDX-License-Identifier: MIT

// Package audit provides structured audit logging for operator actions.
// It follows the WHO/WHAT/WHEN pattern for compliance and forensics.
package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recctl/internal/log"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Session events
	EventSessionOpen  EventType = "session.open"
	EventSessionClose EventType = "session.close"

	// Command events
	EventCommandInput    EventType = "command.input"
	EventCommandRejected EventType = "command.rejected"

	// Control endpoint events
	EventControlDisabled EventType = "control.disabled"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`             // WHO: remote address or "system"
	Action     string            `json:"action"`            // WHAT: human-readable action description
	Resource   string            `json:"resource"`          // Resource affected (e.g. control endpoint)
	Result     string            `json:"result"`            // success, failure, denied
	SessionID  string            `json:"session_id"`        // Control session
	Details    map[string]string `json:"details,omitempty"` // Additional context
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new audit logger with a dedicated "audit" component.
func NewLogger() *Logger {
	return NewLoggerWith(log.WithComponent("audit"))
}

// NewLoggerWith wraps an existing logger.
func NewLoggerWith(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("log_type", "audit").Logger(),
	}
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	logEvent := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str("event_type", string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.SessionID != "" {
		logEvent.Str(log.FieldSessionID, event.SessionID)
	}
	for key, value := range event.Details {
		logEvent.Str(key, value)
	}

	logEvent.Msg("audit event")
}

// LogFromContext fills the session id from ctx when the event lacks one.
func (l *Logger) LogFromContext(ctx context.Context, event Event) {
	if event.SessionID == "" {
		event.SessionID = log.SessionIDFromContext(ctx)
	}
	l.Log(event)
}

// SessionOpened logs an accepted control connection.
func (l *Logger) SessionOpened(ctx context.Context, remote string) {
	l.LogFromContext(ctx, Event{
		Type:     EventSessionOpen,
		Actor:    remote,
		Action:   "opened control session",
		Resource: "control",
		Result:   "success",
	})
}

// SessionClosed logs the end of a control connection.
func (l *Logger) SessionClosed(ctx context.Context, remote string, lines int) {
	l.LogFromContext(ctx, Event{
		Type:     EventSessionClose,
		Actor:    remote,
		Action:   "closed control session",
		Resource: "control",
		Result:   "success",
		Details:  map[string]string{"lines": strconv.Itoa(lines)},
	})
}

// CommandInput logs a command forwarded to the state machine.
func (l *Logger) CommandInput(ctx context.Context, remote, command, input string) {
	l.LogFromContext(ctx, Event{
		Type:     EventCommandInput,
		Actor:    remote,
		Action:   "posted " + input,
		Resource: "statemachine",
		Result:   "success",
		Details:  map[string]string{log.FieldCommand: command},
	})
}

// CommandRejected logs a recognized command without behaviour.
func (l *Logger) CommandRejected(ctx context.Context, remote, command string) {
	l.LogFromContext(ctx, Event{
		Type:     EventCommandRejected,
		Actor:    remote,
		Action:   "rejected unhandled command",
		Resource: "control",
		Result:   "denied",
		Details:  map[string]string{log.FieldCommand: command},
	})
}

// ControlDisabled logs that the control endpoint could not start.
func (l *Logger) ControlDisabled(reason string) {
	l.Log(Event{
		Type:     EventControlDisabled,
		Actor:    "system",
		Action:   "disabled control endpoint",
		Resource: "control",
		Result:   "failure",
		Details:  map[string]string{"reason": reason},
	})
}
