// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides a unified configuration loader for TaskForge
// components.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	k          *koanf.Koanf
	envPrefix  string
	envAliases map[string]string
	logger     *slog.Logger
}

// Validator can be implemented by config structs to enable validation.
type Validator interface {
	Validate() error
}

// NewLoader creates a new configuration loader.
// envPrefix should be like "TASK_QUEUE" (without trailing delimiter).
// Environment variables use double underscore (__) for nesting:
// TASK_QUEUE__SERVER__PORT -> server.port
func NewLoader(envPrefix string, opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: envPrefix + "__",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadWithDefaults loads configuration with the following priority (highest
// to lowest):
//  1. Environment variables (nested form, then flat aliases)
//  2. Config file (YAML)
//  3. Struct defaults
//
// If configPath is specified but the file does not exist, an error is
// returned. If configPath is empty, only defaults and environment variables
// are used.
func (l *Loader) LoadWithDefaults(defaults any, configPath string) error {
	if defaults != nil {
		if err := l.k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
			return fmt.Errorf("failed to load defaults: %w", err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file not found: %s", configPath)
		}
		if err := l.k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Double underscore (__) for nesting: TASK_QUEUE__SERVER__PORT -> server.port
	envProvider := env.Provider(l.envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		return key
	})
	if err := l.k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	l.loadEnvAliases()
	return nil
}

// loadEnvAliases applies the registered flat environment variable aliases
// (e.g. TASK_QUEUE_PORT -> server.port). Values are coerced to the type of
// the current value at the key; a value that does not parse is logged and
// skipped so a malformed variable never prevents startup.
func (l *Loader) loadEnvAliases() {
	for name, key := range l.envAliases {
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			continue
		}
		value, err := coerce(raw, l.k.Get(key))
		if err != nil {
			l.logger.Warn("ignoring malformed environment variable", "name", name, "error", err)
			continue
		}
		if err := l.k.Set(key, value); err != nil {
			l.logger.Warn("ignoring malformed environment variable", "name", name, "error", err)
		}
	}
}

// coerce parses raw into the type of the current value at the same key.
// Keys without a default keep the raw string.
func coerce(raw string, current any) (any, error) {
	switch current.(type) {
	case int, int64:
		return strconv.Atoi(raw)
	case float64:
		return strconv.ParseFloat(raw, 64)
	case bool:
		return strconv.ParseBool(raw)
	case time.Duration:
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}

// LoadFlags applies CLI flag overrides using explicit mappings.
// Only flags that were explicitly set by the user are applied.
// Call this after LoadWithDefaults for highest priority overrides.
func (l *Loader) LoadFlags(flags *pflag.FlagSet, mappings map[string]string) error {
	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := mappings[f.Name]; ok {
			if err := l.k.Set(key, f.Value.String()); err != nil {
				errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

// Unmarshal unmarshals the loaded configuration into the provided struct.
func (l *Loader) Unmarshal(path string, out any) error {
	return l.k.Unmarshal(path, out)
}

// UnmarshalAndValidate unmarshals the configuration and validates it.
// If out implements Validator, Validate() is called after unmarshaling.
func (l *Loader) UnmarshalAndValidate(path string, out any) error {
	if err := l.k.Unmarshal(path, out); err != nil {
		return err
	}
	if v, ok := out.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Set manually sets a configuration value.
func (l *Loader) Set(key string, value any) error {
	return l.k.Set(key, value)
}

// Raw returns all loaded configuration as a nested map.
func (l *Loader) Raw() map[string]any {
	return l.k.Raw()
}

// DumpYAML writes the loaded configuration as YAML to the provided writer.
func (l *Loader) DumpYAML(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(l.k.Raw())
}
