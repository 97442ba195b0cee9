// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func setupTestServer(t *testing.T) (*mcp.ClientSession, *MockToolsetHandler) {
	t.Helper()
	mockHandler := NewMockToolsetHandler()
	toolsets := &Toolsets{
		TaskToolset:     mockHandler,
		ProjectToolset:  mockHandler,
		WorkflowToolset: mockHandler,
	}
	clientSession := setupTestServerWithToolset(t, toolsets)
	return clientSession, mockHandler
}

// setupTestServerWithToolset creates a test MCP server with the provided toolsets
func setupTestServerWithToolset(t *testing.T, toolsets *Toolsets) *mcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-taskforge-api",
		Version: "1.0.0",
	}, nil)

	toolsets.Register(server)

	// Create client connection
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	_, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect server: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect client: %v", err)
	}

	return clientSession
}

// toolNamesByToolset maps each toolset to the tools it registers.
var toolNamesByToolset = map[string][]string{
	"task": {
		"submit_task", "upsert_task", "get_task", "list_tasks", "update_task",
		"retry_task", "cancel_task", "delete_task", "add_dependency",
		"advance_workflow_phase", "set_technical_documentation", "set_test_coverage",
		"add_ai_review_report", "get_phase_progress", "get_workflow_instructions",
	},
	"project": {
		"create_project", "get_project", "get_project_tasks", "list_projects",
		"update_project", "delete_project",
	},
	"workflow": {
		"submit_workflow", "get_workflow_status", "get_queue_stats",
	},
}
