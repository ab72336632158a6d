// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ControlServer is the lifecycle surface of control.Server.
type ControlServer interface {
	Start(ctx context.Context) error
	Stop()
	Enabled() bool
	Addr() string
}

// AdminServer is the lifecycle surface of admin.Server.
type AdminServer interface {
	Start() error
	Shutdown(ctx context.Context) error
	Addr() string
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// Control is the TCP control endpoint. Its startup failures are not fatal.
	Control ControlServer

	// Admin is the optional HTTP side channel (nil when disabled).
	Admin AdminServer

	// ShutdownTimeout bounds Shutdown, including hooks.
	ShutdownTimeout time.Duration
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Control == nil {
		return ErrMissingControl
	}
	return nil
}
