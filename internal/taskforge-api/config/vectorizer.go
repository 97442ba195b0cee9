// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"net/url"

	"github.com/taskforge/taskforge/internal/config"
)

// VectorizerConfig defines the optional task context indexing client.
type VectorizerConfig struct {
	// Endpoint is the vectorizer base URL. Empty disables indexing.
	Endpoint string `koanf:"endpoint"`
	// Collection is the target collection name.
	Collection string `koanf:"collection"`
	// AutoIndex enables best-effort indexing of submitted tasks.
	AutoIndex bool `koanf:"auto_index"`
}

// VectorizerDefaults returns the default vectorizer configuration.
func VectorizerDefaults() VectorizerConfig {
	return VectorizerConfig{
		Collection: "task-queue-context",
	}
}

// Validate validates the vectorizer configuration.
func (c *VectorizerConfig) Validate(path *config.Path) config.ValidationErrors {
	var errs config.ValidationErrors

	if c.Endpoint != "" {
		if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
			errs = append(errs, config.Invalid(path.Child("endpoint"), "must be a valid URL"))
		}
	}
	if c.AutoIndex {
		if err := config.MustNotBeEmpty(path.Child("collection"), c.Collection); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
