// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools defines the MCP toolsets exposed by the task queue.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
)

// RegisterFunc registers one tool on a server.
type RegisterFunc func(*mcp.Server)

type Toolsets struct {
	TaskToolset     TaskToolsetHandler
	ProjectToolset  ProjectToolsetHandler
	WorkflowToolset WorkflowToolsetHandler
}

// TaskToolsetHandler handles task operations and the per-task development
// workflow.
type TaskToolsetHandler interface {
	SubmitTask(ctx context.Context, req *models.SubmitTaskRequest) (any, error)
	UpsertTask(ctx context.Context, req *models.SubmitTaskRequest) (any, error)
	GetTask(ctx context.Context, taskID string) (any, error)
	ListTasks(ctx context.Context, projectID, status string) (any, error)
	UpdateTask(ctx context.Context, taskID string, req *models.UpdateTaskRequest) (any, error)
	RetryTask(ctx context.Context, taskID string, resetRetryCount bool) (any, error)
	CancelTask(ctx context.Context, taskID, reason string) (any, error)
	DeleteTask(ctx context.Context, taskID string) (any, error)
	AddDependency(ctx context.Context, taskID string, req *models.AddDependencyRequest) (any, error)

	// Development workflow operations
	AdvanceWorkflowPhase(ctx context.Context, taskID string) (any, error)
	SetTechnicalDocumentation(ctx context.Context, taskID, path string) (any, error)
	SetTestCoverage(ctx context.Context, taskID string, coverage float64) (any, error)
	AddAIReviewReport(ctx context.Context, taskID string, req *models.AddReviewRequest) (any, error)
	GetPhaseProgress(ctx context.Context, taskID string) (any, error)
}

// ProjectToolsetHandler handles project operations.
type ProjectToolsetHandler interface {
	CreateProject(ctx context.Context, req *models.CreateProjectRequest) (any, error)
	GetProject(ctx context.Context, projectID string) (any, error)
	GetProjectTasks(ctx context.Context, projectID string) (any, error)
	ListProjects(ctx context.Context) (any, error)
	UpdateProject(ctx context.Context, projectID string, req *models.UpdateProjectRequest) (any, error)
	DeleteProject(ctx context.Context, projectID string) (any, error)
}

// WorkflowToolsetHandler handles multi-task workflows and queue-wide stats.
type WorkflowToolsetHandler interface {
	SubmitWorkflow(ctx context.Context, req *models.SubmitWorkflowRequest) (any, error)
	GetWorkflowStatus(ctx context.Context, workflowID string) (any, error)
	GetQueueStats(ctx context.Context) (any, error)
}
