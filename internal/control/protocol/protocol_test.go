// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaseInsensitive(t *testing.T) {
	for _, c := range Commands {
		for _, text := range []string{string(c), strings.ToLower(string(c)), strings.ToUpper(string(c))} {
			got, err := Parse(text)
			require.NoError(t, err, text)
			assert.Equal(t, c, got, text)
		}
	}
	got, err := Parse("sTaTuS")
	require.NoError(t, err)
	assert.Equal(t, CommandStatus, got)
}

func TestParseRejectsNonCommands(t *testing.T) {
	for _, text := range []string{
		"",
		"bogus",
		" status",
		"status ",
		"stat",
		"statuss",
		"status\n",
		"CommandStart",
		"0",
	} {
		_, err := Parse(text)
		require.Error(t, err, "%q", text)
		assert.True(t, errors.Is(err, ErrUnknownCommand), "%q", text)

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, text, perr.Text, "parse error keeps the text verbatim")
	}
}

func TestDispatchMappedCommandsPostExactlyOneInput(t *testing.T) {
	d := DefaultDispatcher()
	for c, want := range DefaultInputTable {
		a := d.Dispatch(c)
		assert.Equal(t, ActionPostInput, a.Kind, c)
		assert.Equal(t, want, a.Input, c)
	}
}

func TestDispatchStatusReportsAndNeverPosts(t *testing.T) {
	a := DefaultDispatcher().Dispatch(CommandStatus)
	assert.Equal(t, ActionReportStatus, a.Kind)
	assert.Empty(t, a.Input)
}

func TestDispatchUnmappedCommandIsRejected(t *testing.T) {
	a := DefaultDispatcher().Dispatch(CommandPreview)
	assert.Equal(t, ActionRejectUnhandled, a.Kind)
	assert.Empty(t, a.Input)
}

func TestDispatchMappingWinsOverStatus(t *testing.T) {
	d, err := NewDispatcher(map[Command]Input{CommandStatus: InputRecorderIdle})
	require.NoError(t, err)
	a := d.Dispatch(CommandStatus)
	assert.Equal(t, ActionPostInput, a.Kind)
	assert.Equal(t, InputRecorderIdle, a.Input)
}

func TestEveryCommandHasExactlyOneAction(t *testing.T) {
	d := DefaultDispatcher()
	for _, c := range Commands {
		a := d.Dispatch(c)
		_, mapped := d.inputFor(c)
		switch {
		case mapped:
			assert.Equal(t, ActionPostInput, a.Kind, c)
		case c == CommandStatus:
			assert.Equal(t, ActionReportStatus, a.Kind, c)
		default:
			assert.Equal(t, ActionRejectUnhandled, a.Kind, c)
		}
	}
}

func TestDefaultInputTableIsConsistent(t *testing.T) {
	seen := map[Input]Command{}
	for c, in := range DefaultInputTable {
		assert.True(t, c.Valid(), "command %q", c)
		assert.True(t, in.Valid(), "input %q", in)
		if prev, dup := seen[in]; dup {
			t.Errorf("input %s mapped from both %s and %s", in, prev, c)
		}
		seen[in] = c
	}
	_, statusMapped := DefaultInputTable[CommandStatus]
	assert.False(t, statusMapped)
}

func TestNewDispatcherValidatesTable(t *testing.T) {
	_, err := NewDispatcher(map[Command]Input{"Reboot": InputCommandStart})
	assert.Error(t, err)

	_, err = NewDispatcher(map[Command]Input{CommandStart: "CommandReboot"})
	assert.Error(t, err)
}

func TestResponseLines(t *testing.T) {
	assert.Equal(t, "TCP-Error: Command not found: bogus", NotFoundLine("bogus"))
	assert.Equal(t, "Error: Unhandled console command: PREVIEW", UnhandledLine("PREVIEW"))
	assert.Equal(t, "Recorder-Status: Idle", StatusLine("Idle"))
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "post_input", ActionPostInput.String())
	assert.Equal(t, "report_status", ActionReportStatus.String())
	assert.Equal(t, "reject_unhandled", ActionRejectUnhandled.String())
}
