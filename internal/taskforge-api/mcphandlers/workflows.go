// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package mcphandlers

import (
	"context"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/pkg/mcp/tools"
)

func (h *MCPHandler) SubmitWorkflow(ctx context.Context, req *models.SubmitWorkflowRequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	wf, err := req.ToWorkflow()
	if err != nil {
		return nil, err
	}
	return h.services.WorkflowService.Submit(ctx, wf)
}

func (h *MCPHandler) GetWorkflowStatus(ctx context.Context, workflowID string) (any, error) {
	id, err := parseID("workflow", workflowID)
	if err != nil {
		return nil, err
	}
	return h.services.WorkflowService.Get(ctx, id)
}

func (h *MCPHandler) GetQueueStats(ctx context.Context) (any, error) {
	return h.services.Stats()
}

var _ tools.WorkflowToolsetHandler = (*MCPHandler)(nil)
