// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package mcphandlers

import (
	"context"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
	"github.com/taskforge/taskforge/internal/taskqueue"
	"github.com/taskforge/taskforge/pkg/mcp/tools"
)

// taskWithInstructions pairs a task with the guidance for its current phase.
type taskWithInstructions struct {
	Task         *taskqueue.Task `json:"task"`
	Instructions string          `json:"workflow_instructions"`
}

func withInstructions(task *taskqueue.Task) taskWithInstructions {
	return taskWithInstructions{
		Task:         task,
		Instructions: tools.PhaseInstructions(string(task.EffectiveStatus())),
	}
}

func (h *MCPHandler) SubmitTask(ctx context.Context, req *models.SubmitTaskRequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	task, err := h.services.TaskService.Submit(ctx, req.ToTask())
	if err != nil {
		return nil, err
	}
	return withInstructions(task), nil
}

func (h *MCPHandler) UpsertTask(ctx context.Context, req *models.SubmitTaskRequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	task, created, err := h.services.TaskService.Upsert(ctx, req.ToTask())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"task":    task,
		"created": created,
	}, nil
}

func (h *MCPHandler) GetTask(ctx context.Context, taskID string) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	task, err := h.services.TaskService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return withInstructions(task), nil
}

func (h *MCPHandler) ListTasks(ctx context.Context, projectID, status string) (any, error) {
	filter := services.TaskFilter{Status: status}
	if projectID != "" {
		id, err := parseID("project", projectID)
		if err != nil {
			return nil, err
		}
		filter.ProjectID = id
	}
	tasks, err := h.services.TaskService.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return models.TaskListResponse{Tasks: tasks, Count: len(tasks)}, nil
}

func (h *MCPHandler) UpdateTask(ctx context.Context, taskID string, req *models.UpdateTaskRequest) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	update := services.TaskUpdate{
		Name:               req.Name,
		Command:            req.Command,
		Description:        req.Description,
		TechnicalSpecs:     req.TechnicalSpecs,
		AcceptanceCriteria: req.AcceptanceCriteria,
		ProjectID:          req.ProjectID,
		Metadata:           req.Metadata,
	}
	if req.Priority != nil {
		priority := taskqueue.TaskPriority(*req.Priority)
		update.Priority = &priority
	}
	if req.Status != nil {
		status, err := taskqueue.ParseTaskStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &status
	}
	task, err := h.services.TaskService.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return withInstructions(task), nil
}

func (h *MCPHandler) RetryTask(ctx context.Context, taskID string, resetRetryCount bool) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	return h.services.TaskService.Retry(ctx, id, resetRetryCount)
}

func (h *MCPHandler) CancelTask(ctx context.Context, taskID, reason string) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	return h.services.TaskService.Cancel(ctx, id, reason)
}

func (h *MCPHandler) DeleteTask(ctx context.Context, taskID string) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	if err := h.services.TaskService.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]string{"task_id": taskID, "status": "deleted"}, nil
}

func (h *MCPHandler) AddDependency(ctx context.Context, taskID string, req *models.AddDependencyRequest) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return h.services.TaskService.AddDependency(ctx, id, req.ToDependency())
}

func (h *MCPHandler) AdvanceWorkflowPhase(ctx context.Context, taskID string) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	task, err := h.services.TaskService.AdvanceWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"task_id":               task.ID,
		"workflow_status":       task.Workflow.Status,
		"workflow_instructions": tools.PhaseInstructions(string(task.Workflow.Status)),
	}, nil
}

func (h *MCPHandler) SetTechnicalDocumentation(ctx context.Context, taskID, path string) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	return h.services.TaskService.SetTechnicalDocumentation(ctx, id, path)
}

func (h *MCPHandler) SetTestCoverage(ctx context.Context, taskID string, coverage float64) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	return h.services.TaskService.SetTestCoverage(ctx, id, coverage)
}

func (h *MCPHandler) AddAIReviewReport(ctx context.Context, taskID string, req *models.AddReviewRequest) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return h.services.TaskService.AddAIReviewReport(ctx, id, req.ToReview())
}

func (h *MCPHandler) GetPhaseProgress(ctx context.Context, taskID string) (any, error) {
	id, err := parseID("task", taskID)
	if err != nil {
		return nil, err
	}
	task, err := h.services.TaskService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.WorkflowProgressFrom(task), nil
}

var _ tools.TaskToolsetHandler = (*MCPHandler)(nil)
