// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand: the line is not any recognized Command.
	ErrUnknownCommand = errors.New("command not found")

	// ErrUnhandledCommand: the line is a Command with no mapped behaviour.
	ErrUnhandledCommand = errors.New("unhandled console command")
)

// ParseError carries the verbatim text that failed to parse.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownCommand, e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrUnknownCommand
}
