// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"errors"
	"fmt"
)

var (
	// ErrStartup marks every failure that leaves the server disabled.
	ErrStartup = errors.New("control: startup failed")

	// ErrServerClosed is returned by Start after Stop.
	ErrServerClosed = errors.New("control: server closed")
)

// StartupError describes why the control endpoint could not start.
type StartupError struct {
	Op   string // "validate", "listen" or "start"
	Addr string
	Err  error
}

func (e *StartupError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("control: %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("control: %s: %v", e.Op, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrStartup in addition to the wrapped cause.
func (e *StartupError) Is(target error) bool { return target == ErrStartup }
