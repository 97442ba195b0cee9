// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
)

func (t *Toolsets) RegisterSubmitWorkflow(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "submit_workflow",
		Description: "Submit a workflow of multiple tasks with dependencies between them. Tasks are " +
			"given as a JSON array of {name, command, description, priority, project_id}; dependencies " +
			"as a JSON array of {from_task, to_task, condition} referencing tasks by name. The " +
			"dependency graph must be acyclic.",
		InputSchema: createSchema(map[string]any{
			"name":         stringProperty("Workflow name"),
			"description":  stringProperty("Human-readable description"),
			"tasks":        stringProperty("JSON array of task definitions"),
			"dependencies": stringProperty("JSON array of dependency edges (optional)"),
		}, []string{"name", "tasks"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		Tasks        string `json:"tasks"`
		Dependencies string `json:"dependencies"`
	}) (*mcp.CallToolResult, any, error) {
		workflowReq := &models.SubmitWorkflowRequest{
			Name:        args.Name,
			Description: args.Description,
		}
		if err := json.Unmarshal([]byte(args.Tasks), &workflowReq.Tasks); err != nil {
			return nil, nil, err
		}
		if args.Dependencies != "" {
			if err := json.Unmarshal([]byte(args.Dependencies), &workflowReq.Dependencies); err != nil {
				return nil, nil, err
			}
		}
		result, err := t.WorkflowToolset.SubmitWorkflow(ctx, workflowReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetWorkflowStatus(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workflow_status",
		Description: "Get a workflow with its status, tasks and dependency edges.",
		InputSchema: createSchema(map[string]any{
			"workflow_id": defaultStringProperty(),
		}, []string{"workflow_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		WorkflowID string `json:"workflow_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.WorkflowToolset.GetWorkflowStatus(ctx, args.WorkflowID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetQueueStats(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_queue_stats",
		Description: "Get queue-wide statistics: task counts by status, workflow and project counts, and storage figures.",
		InputSchema: createSchema(map[string]any{}, nil),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		result, err := t.WorkflowToolset.GetQueueStats(ctx)
		return handleToolResult(result, err)
	})
}
