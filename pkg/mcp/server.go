// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes the task queue to AI coding agents over the Model
// Context Protocol.
package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskforge/taskforge/pkg/mcp/tools"
)

const serverName = "taskforge-api"

// NewHTTPServer returns the streamable HTTP transport handler.
func NewHTTPServer(tools *tools.Toolsets) http.Handler {
	server := newServer(tools)
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)
}

// NewSSEHandler returns the legacy SSE transport handler. The same handler
// serves both the event stream endpoint and the message post endpoint.
func NewSSEHandler(tools *tools.Toolsets) http.Handler {
	server := newServer(tools)
	return mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)
}

func newServer(toolsets *tools.Toolsets) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: "1.0.0",
	}, &mcp.ServerOptions{
		Instructions: tools.ServerInstructions,
	})
	toolsets.Register(server)
	return server
}
