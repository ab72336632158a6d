// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/recctl/internal/log"
)

// Runner is a long-lived loop stopped by ctx.
type Runner interface {
	Run(ctx context.Context) error
}

// Refresher is a Runner that can be asked to refresh early.
type Refresher interface {
	Runner
	Trigger()
}

// ScheduleWatcher reports changes to a schedule source.
type ScheduleWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// App owns the long-lived runtime (state machine, recorder poller,
// schedule watcher) and delegates server management to Manager.
type App struct {
	logger  zerolog.Logger
	manager Manager
	machine Runner
	poller  Refresher
	watcher ScheduleWatcher
}

// NewApp creates a new App orchestrator. machine, poller and watcher are
// optional.
func NewApp(logger zerolog.Logger, manager Manager, machine Runner, poller Refresher, watcher ScheduleWatcher) *App {
	return &App{
		logger:  logger,
		manager: manager,
		machine: machine,
		poller:  poller,
		watcher: watcher,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.machine != nil {
		g.Go(func() error { return a.machine.Run(ctx) })
	}

	if a.poller != nil {
		g.Go(func() error { return a.poller.Run(ctx) })
	}

	// The watcher is best-effort: polling still picks up file edits.
	if a.watcher != nil && a.poller != nil {
		g.Go(func() error {
			if err := a.watcher.Watch(ctx, a.poller.Trigger); err != nil {
				a.logger.Warn().
					Err(err).
					Str(log.FieldEvent, "recorder.watch_failed").
					Msg("schedule watcher failed, relying on polling")
			}
			return nil
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}
