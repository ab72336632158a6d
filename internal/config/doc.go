// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config provides configuration management for recctl.
//
// Configuration is resolved once at startup with precedence
// ENV > YAML file > defaults and is not reloaded afterwards.
package config
