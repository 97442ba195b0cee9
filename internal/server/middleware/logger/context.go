// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"context"
	"log/slog"

	"github.com/taskforge/taskforge/internal/logging"
)

// WithLogger attaches a request scoped logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.NewContext(ctx, logger)
}

// GetLogger retrieves the request scoped logger from the context, falling
// back to slog.Default().
func GetLogger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
