// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config defines the taskforge-api configuration sections and the
// loading pipeline: struct defaults, optional YAML file, environment
// variables and command line flags, in ascending priority.
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	coreconfig "github.com/taskforge/taskforge/internal/config"
)

// EnvPrefix is the nested environment variable prefix
// (TASK_QUEUE__SERVER__PORT -> server.port).
const EnvPrefix = "TASK_QUEUE"

// Config is the top-level configuration for taskforge-api.
type Config struct {
	// Server defines HTTP server settings.
	Server ServerConfig `koanf:"server"`
	// Storage defines the embedded database settings.
	Storage StorageConfig `koanf:"storage"`
	// Execution defines queue execution policy defaults.
	Execution ExecutionConfig `koanf:"execution"`
	// Vectorizer defines the optional task context indexing client.
	Vectorizer VectorizerConfig `koanf:"vectorizer"`
	// Monitoring defines metrics settings.
	Monitoring MonitoringConfig `koanf:"monitoring"`
	// Logging defines logging settings.
	Logging LoggingConfig `koanf:"logging"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Server:     ServerDefaults(),
		Storage:    StorageDefaults(),
		Execution:  ExecutionDefaults(),
		Vectorizer: VectorizerDefaults(),
		Monitoring: MonitoringDefaults(),
		Logging:    LoggingDefaults(),
	}
}

// envAliases maps the flat TASK_QUEUE_* variables older deployments use onto
// config keys.
func envAliases() map[string]string {
	return map[string]string{
		"TASK_QUEUE_HOST":            "server.host",
		"TASK_QUEUE_PORT":            "server.port",
		"TASK_QUEUE_DB_PATH":         "storage.database_path",
		"TASK_QUEUE_MAX_CONCURRENT":  "execution.max_concurrent",
		"TASK_QUEUE_DEFAULT_TIMEOUT": "execution.default_timeout",
		"TASK_QUEUE_RETRY_ATTEMPTS":  "execution.retry_attempts",
		"TASK_QUEUE_RETRY_DELAY":     "execution.retry_delay",
		"TASK_QUEUE_METRICS_ENABLED": "monitoring.metrics_enabled",
		"TASK_QUEUE_METRICS_PORT":    "monitoring.metrics_port",
	}
}

// FlagMappings maps command line flag names onto config keys.
func FlagMappings() map[string]string {
	return map[string]string{
		"host":    "server.host",
		"port":    "server.port",
		"db-path": "storage.database_path",
	}
}

// Load reads the configuration from defaults, the optional YAML file at
// configPath, environment variables and the given flags.
func Load(configPath string, flags *pflag.FlagSet, logger *slog.Logger) (*Config, error) {
	loader := coreconfig.NewLoader(EnvPrefix,
		coreconfig.WithLogger(logger),
		coreconfig.WithEnvAliases(envAliases()),
	)

	if err := loader.LoadWithDefaults(Defaults(), configPath); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags != nil {
		if err := loader.LoadFlags(flags, FlagMappings()); err != nil {
			return nil, fmt.Errorf("failed to apply flags: %w", err)
		}
	}

	var cfg Config
	if err := loader.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs coreconfig.ValidationErrors

	errs = append(errs, c.Server.Validate(coreconfig.NewPath("server"))...)
	errs = append(errs, c.Storage.Validate(coreconfig.NewPath("storage"))...)
	errs = append(errs, c.Execution.Validate(coreconfig.NewPath("execution"))...)
	errs = append(errs, c.Vectorizer.Validate(coreconfig.NewPath("vectorizer"))...)
	errs = append(errs, c.Monitoring.Validate(coreconfig.NewPath("monitoring"))...)
	errs = append(errs, c.Logging.Validate(coreconfig.NewPath("logging"))...)

	return errs.OrNil()
}
