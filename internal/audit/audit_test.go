// SPDX-License-Identifier: MIT

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/recctl/internal/log"
)

func newBufferLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLoggerWith(zerolog.New(&buf)), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger())
}

func TestLogger_Log(t *testing.T) {
	l, buf := newBufferLogger()
	l.Log(Event{
		Type:      EventCommandInput,
		Actor:     "10.0.0.5:51000",
		Action:    "posted CommandStart",
		Resource:  "statemachine",
		Result:    "success",
		SessionID: "sess-1",
		Details:   map[string]string{"extra": "1"},
	})

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	got := lines[0]
	assert.Equal(t, "audit", got["log_type"])
	assert.Equal(t, "command.input", got["event_type"])
	assert.Equal(t, "10.0.0.5:51000", got["actor"])
	assert.Equal(t, "sess-1", got[log.FieldSessionID])
	assert.Equal(t, "1", got["extra"])
	assert.NotEmpty(t, got["timestamp"])
}

func TestLogger_LogKeepsTimestamp(t *testing.T) {
	l, buf := newBufferLogger()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Log(Event{Type: EventSessionOpen, Timestamp: ts})

	got := decodeLines(t, buf)[0]
	assert.Equal(t, ts.Format(zerolog.TimeFieldFormat), got["timestamp"])
}

func TestSessionHelpersUseContextSessionID(t *testing.T) {
	l, buf := newBufferLogger()
	ctx := log.ContextWithSessionID(context.Background(), "sess-42")

	l.SessionOpened(ctx, "127.0.0.1:1")
	l.CommandInput(ctx, "127.0.0.1:1", "Start", "CommandStart")
	l.CommandRejected(ctx, "127.0.0.1:1", "Preview")
	l.SessionClosed(ctx, "127.0.0.1:1", 3)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Equal(t, "sess-42", line[log.FieldSessionID])
	}
	assert.Equal(t, "session.open", lines[0]["event_type"])
	assert.Equal(t, "Start", lines[1][log.FieldCommand])
	assert.Equal(t, "denied", lines[2]["result"])
	assert.Equal(t, "3", lines[3]["lines"])
}

func TestControlDisabled(t *testing.T) {
	l, buf := newBufferLogger()
	l.ControlDisabled("bind failed")

	got := decodeLines(t, buf)[0]
	assert.Equal(t, "control.disabled", got["event_type"])
	assert.Equal(t, "system", got["actor"])
	assert.Equal(t, "bind failed", got["reason"])
}
