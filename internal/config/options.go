// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a custom logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithEnvAliases registers flat environment variable aliases, mapping a full
// variable name to a config key (e.g. "TASK_QUEUE_PORT" -> "server.port").
func WithEnvAliases(aliases map[string]string) Option {
	return func(l *Loader) {
		l.envAliases = aliases
	}
}
