// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/taskforge/taskforge/internal/config"
)

// ExecutionConfig defines queue execution policy defaults. The queue tracks
// tasks rather than running them, these values are recorded on tasks for
// the agents that do.
type ExecutionConfig struct {
	// MaxConcurrent caps how many tasks agents should run at once.
	MaxConcurrent int `koanf:"max_concurrent"`
	// DefaultTimeout is the execution timeout recorded for tasks without one.
	DefaultTimeout time.Duration `koanf:"default_timeout"`
	// RetryAttempts is the default retry budget per task.
	RetryAttempts int `koanf:"retry_attempts"`
	// RetryDelay is the default delay between retries.
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// ExecutionDefaults returns the default execution configuration.
func ExecutionDefaults() ExecutionConfig {
	return ExecutionConfig{
		MaxConcurrent:  10,
		DefaultTimeout: 5 * time.Minute,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
	}
}

// Validate validates the execution configuration.
func (c *ExecutionConfig) Validate(path *config.Path) config.ValidationErrors {
	var errs config.ValidationErrors

	if err := config.MustBeGreaterThan(path.Child("max_concurrent"), c.MaxConcurrent, 0); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustBeNonNegative(path.Child("default_timeout"), c.DefaultTimeout); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustBeNonNegative(path.Child("retry_attempts"), c.RetryAttempts); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustBeNonNegative(path.Child("retry_delay"), c.RetryDelay); err != nil {
		errs = append(errs, err)
	}

	return errs
}
