// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/taskforge/taskforge/internal/config"
)

// MonitoringConfig defines metrics settings.
type MonitoringConfig struct {
	// MetricsEnabled exposes the Prometheus endpoint when true.
	MetricsEnabled bool `koanf:"metrics_enabled"`
	// MetricsPort runs /metrics on a dedicated listener when non-zero.
	// Zero serves /metrics on the API server port.
	MetricsPort int `koanf:"metrics_port"`
}

// MonitoringDefaults returns the default monitoring configuration.
func MonitoringDefaults() MonitoringConfig {
	return MonitoringConfig{
		MetricsEnabled: true,
		MetricsPort:    9090,
	}
}

// Validate validates the monitoring configuration.
func (c *MonitoringConfig) Validate(path *config.Path) config.ValidationErrors {
	var errs config.ValidationErrors
	if err := config.MustBeInRange(path.Child("metrics_port"), c.MetricsPort, 0, 65535); err != nil {
		errs = append(errs, err)
	}
	return errs
}
