// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/taskforge/taskforge/internal/config"
)

// StorageConfig defines the embedded database settings.
type StorageConfig struct {
	// DatabasePath is the SQLite file path. An unopenable path degrades to
	// an in-memory database at startup.
	DatabasePath string `koanf:"database_path"`
}

// StorageDefaults returns the default storage configuration.
func StorageDefaults() StorageConfig {
	return StorageConfig{
		DatabasePath: "./data/task-queue.db",
	}
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate(path *config.Path) config.ValidationErrors {
	var errs config.ValidationErrors
	if err := config.MustNotBeEmpty(path.Child("database_path"), c.DatabasePath); err != nil {
		errs = append(errs, err)
	}
	return errs
}
