// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/recctl/internal/config"
	"github.com/ManuGH/recctl/internal/version"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and generate configuration files",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd(), newConfigDumpCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var out string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out = strings.TrimSpace(out)
			if out == "" {
				return errors.New("--out is required")
			}
			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", out)
				}
			}
			if err := config.WriteFile(out, config.DefaultConfig()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination path (.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file, including the control section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path = strings.TrimSpace(path)
			if path == "" {
				return errors.New("--config is required")
			}
			cfg, err := config.NewLoader(path, version.Version).Load()
			if err != nil {
				return fmt.Errorf("configuration error in %s: %w", path, err)
			}
			// The daemon only disables the control endpoint on a bad
			// control section; the operator still wants to hear about it.
			if err := config.ValidateControl(cfg.Control); err != nil {
				return fmt.Errorf("control section in %s: %w", path, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "path to config file (YAML)")
	return cmd
}

func newConfigDumpCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration (defaults, file, environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(strings.TrimSpace(path), version.Version).Load()
			if err != nil {
				return err
			}
			cfg.Recorder.OpenWebIF.Password = redact(cfg.Recorder.OpenWebIF.Password)
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "path to config file (YAML)")
	return cmd
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
