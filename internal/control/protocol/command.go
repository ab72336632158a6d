// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package protocol

import "strings"

// Command is a recognized protocol verb.
type Command string

const (
	CommandStatus  Command = "Status"
	CommandStart   Command = "Start"
	CommandStop    Command = "Stop"
	CommandPause   Command = "Pause"
	CommandResume  Command = "Resume"
	CommandExtend  Command = "Extend"
	CommandPreview Command = "Preview"
)

// Commands lists every recognized verb in declaration order.
var Commands = []Command{
	CommandStatus,
	CommandStart,
	CommandStop,
	CommandPause,
	CommandResume,
	CommandExtend,
	CommandPreview,
}

var commandsByFold = func() map[string]Command {
	m := make(map[string]Command, len(Commands))
	for _, c := range Commands {
		m[strings.ToLower(string(c))] = c
	}
	return m
}()

func (c Command) String() string { return string(c) }

// Valid reports whether c is part of the enumeration.
func (c Command) Valid() bool {
	got, ok := commandsByFold[strings.ToLower(string(c))]
	return ok && got == c
}

// Parse maps a framed line to a Command. Matching is case-insensitive and
// exact: no trimming, no prefixes, no whitespace tolerance.
func Parse(line string) (Command, error) {
	if c, ok := commandsByFold[strings.ToLower(line)]; ok {
		return c, nil
	}
	return "", &ParseError{Text: line}
}
