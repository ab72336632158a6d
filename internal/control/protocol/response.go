// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package protocol

// Response line prefixes.
const (
	UnhandledPrefix = "Error: Unhandled console command: "
	NotFoundPrefix  = "TCP-Error: Command not found: "
	StatusPrefix    = "Recorder-Status: "

	// LineTerminator ends every response line.
	LineTerminator = "\n"
)

// UnhandledLine is written for a valid Command without behaviour.
func UnhandledLine(text string) string {
	return UnhandledPrefix + text
}

// NotFoundLine is written for text that is not a Command at all.
func NotFoundLine(text string) string {
	return NotFoundPrefix + text
}

// StatusLine renders the state machine state line.
func StatusLine(state string) string {
	return StatusPrefix + state
}
