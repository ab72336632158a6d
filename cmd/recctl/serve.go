// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManuGH/recctl/internal/config"
	"github.com/ManuGH/recctl/internal/daemon"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/version"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	return cmd
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Version: version.Version})
	logger := log.WithComponent("main")

	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		logger.Error().Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str(log.FieldPath, configPath).
			Msg("failed to load configuration")
		return fmt.Errorf("load config: %w", err)
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = log.WithComponent("main")
	logger.Info().
		Str(log.FieldEvent, "config.loaded").
		Str(log.FieldPath, configPath).
		Str("recorder_source", cfg.Recorder.Source).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := daemon.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build daemon: %w", err)
	}
	if err := rt.App.Run(ctx); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("daemon exited with error")
		return err
	}
	logger.Info().Str(log.FieldEvent, "daemon.exited").Msg("daemon exited")
	return nil
}
