// SPDX-License-Identifier: MIT

// Package daemon assembles recctl's components and runs their lifecycle.
package daemon

import (
	"context"
	"fmt"

	"github.com/ManuGH/recctl/internal/admin"
	"github.com/ManuGH/recctl/internal/audit"
	"github.com/ManuGH/recctl/internal/config"
	"github.com/ManuGH/recctl/internal/control"
	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/control/status"
	"github.com/ManuGH/recctl/internal/health"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/openwebif"
	"github.com/ManuGH/recctl/internal/recorder"
	"github.com/ManuGH/recctl/internal/statemachine"
	"github.com/ManuGH/recctl/internal/telemetry"
)

// Runtime is the fully wired daemon.
type Runtime struct {
	Config    config.AppConfig
	Machine   *statemachine.Machine
	Store     *recorder.Store
	Poller    *recorder.Poller
	Control   *control.Server
	Health    *health.Manager
	Admin     *admin.Server
	Telemetry *telemetry.Provider
	Manager   Manager
	App       *App
}

// Build wires every component described by cfg. Nothing listens until
// Runtime.App.Run is called.
func Build(ctx context.Context, cfg config.AppConfig) (*Runtime, error) {
	logger := log.WithComponent("daemon")
	rt := &Runtime{Config: cfg}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.ExporterType,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).
			Str(log.FieldEvent, "telemetry.init_failed").
			Msg("telemetry initialization failed, continuing without tracing")
	} else {
		rt.Telemetry = tp
	}

	machine, err := statemachine.New(cfg.StateMachine.QueueSize)
	if err != nil {
		return nil, err
	}
	rt.Machine = machine

	source, watcher, err := buildSource(cfg.Recorder)
	if err != nil {
		return nil, err
	}
	rt.Store = recorder.NewStore(recorder.RealClock{})
	rt.Poller = recorder.NewPoller(source, rt.Store, machine, cfg.Recorder.PollInterval)

	reporter := status.NewReporter(machine, rt.Store, status.WithLocation(cfg.Recorder.Location()))
	rt.Control = control.NewServer(cfg.Control, machine, reporter, control.WithAudit(audit.NewLogger()))

	if cfg.Control.AnnounceStateChanges {
		ctrl := rt.Control
		machine.OnTransition(func(from, to statemachine.State, _ protocol.Input) {
			if from != to {
				ctrl.Announce(protocol.StatusLine(string(to)))
			}
		})
	}

	rt.Health = health.NewManager(cfg.Version)
	rt.Health.RegisterChecker(health.NewListenerChecker(rt.Control.Enabled, rt.Control.Addr))
	if cfg.Recorder.Source != config.RecorderSourceNone {
		rt.Health.RegisterChecker(health.NewRefreshChecker(rt.Store.LastRefresh, cfg.Recorder.PollInterval))
	}
	if cfg.Recorder.Source == config.RecorderSourceFile {
		rt.Health.RegisterChecker(health.NewFileChecker("schedule_file", cfg.Recorder.ScheduleFile))
	}

	deps := Deps{
		Logger:          logger,
		Control:         rt.Control,
		ShutdownTimeout: cfg.Admin.ShutdownTimeout,
	}
	if cfg.Admin.ListenAddr != "" {
		rt.Admin = admin.NewServer(cfg.Admin.ListenAddr, admin.NewRouter(rt.Health, admin.Options{
			RequestsPerMinute: cfg.Admin.RequestsPerMin,
		}))
		deps.Admin = rt.Admin
	}

	mgr, err := NewManager(deps)
	if err != nil {
		return nil, err
	}
	if rt.Telemetry != nil {
		mgr.RegisterShutdownHook("telemetry", rt.Telemetry.Shutdown)
	}
	rt.Manager = mgr

	var w ScheduleWatcher
	if watcher != nil {
		w = watcher
	}
	rt.App = NewApp(logger, mgr, machine, rt.Poller, w)

	logger.Info().
		Str(log.FieldEvent, "daemon.built").
		Str("recorder_source", source.Name()).
		Bool("control_enabled", cfg.Control.Enabled).
		Str(log.FieldListenAddr, cfg.Control.ListenAddr()).
		Str("admin_addr", cfg.Admin.ListenAddr).
		Msg("daemon components wired")
	return rt, nil
}

func buildSource(cfg config.RecorderConfig) (recorder.Source, *recorder.FileSource, error) {
	switch cfg.Source {
	case config.RecorderSourceOpenWebIF:
		client := openwebif.New(cfg.OpenWebIF.BaseURL, openwebif.Options{
			Timeout:          cfg.OpenWebIF.Timeout,
			Username:         cfg.OpenWebIF.Username,
			Password:         cfg.OpenWebIF.Password,
			BreakerThreshold: cfg.OpenWebIF.BreakerThreshold,
			BreakerReset:     cfg.OpenWebIF.BreakerReset,
		})
		return recorder.NewOpenWebIFSource(client), nil, nil
	case config.RecorderSourceFile:
		fs := recorder.NewFileSource(cfg.ScheduleFile, cfg.Location())
		return fs, fs, nil
	case config.RecorderSourceNone, "":
		return recorder.NoneSource{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown recorder source %q", cfg.Source)
	}
}
