// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcphandlers adapts the MCP tool interfaces to the service layer.
package mcphandlers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/taskforge-api/services"
)

// MCPHandler is a thin adapter between MCP tool interfaces and the services.
type MCPHandler struct {
	services *services.Services
}

// NewMCPHandler creates an MCPHandler backed by the service layer.
func NewMCPHandler(svc *services.Services) *MCPHandler {
	return &MCPHandler{services: svc}
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, raw, err)
	}
	return id, nil
}
