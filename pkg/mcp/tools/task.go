// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

func (t *Toolsets) RegisterSubmitTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "submit_task",
		Description: "Submit a new task to the queue with automatic workflow initialization. The task " +
			"enters the Planning phase immediately and must walk the full development workflow " +
			"(Planning -> Implementation -> TestCreation -> Testing -> AIReview -> Completed). " +
			"Returns the task id and the workflow instructions for the Planning phase.",
		InputSchema: createSchema(map[string]any{
			"name":        stringProperty("Unique task name"),
			"command":     stringProperty("Shell command or action the task represents"),
			"description": stringProperty("Human-readable description"),
			"project_id":  stringProperty("Project id. Use list_projects to discover valid ids"),
			"priority":    stringProperty("One of: low, normal, high, critical (default normal)"),
			"technical_specs": stringProperty(
				"Technical specification the implementation must follow"),
			"acceptance_criteria": arrayProperty("Conditions that must hold for the task to be accepted", "string"),
			"ai_reviews_required": intProperty("Number of AI review approvals required (default 3)"),
		}, []string{"name", "command", "project_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		Name               string   `json:"name"`
		Command            string   `json:"command"`
		Description        string   `json:"description"`
		ProjectID          string   `json:"project_id"`
		Priority           string   `json:"priority"`
		TechnicalSpecs     string   `json:"technical_specs"`
		AcceptanceCriteria []string `json:"acceptance_criteria"`
		AIReviewsRequired  int      `json:"ai_reviews_required"`
	}) (*mcp.CallToolResult, any, error) {
		projectID, err := uuid.Parse(args.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		taskReq := &models.SubmitTaskRequest{
			Name:               args.Name,
			Command:            args.Command,
			Description:        args.Description,
			ProjectID:          projectID,
			Priority:           args.Priority,
			TechnicalSpecs:     args.TechnicalSpecs,
			AcceptanceCriteria: args.AcceptanceCriteria,
			AIReviewsRequired:  args.AIReviewsRequired,
		}
		result, err := t.TaskToolset.SubmitTask(ctx, taskReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterUpsertTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "upsert_task",
		Description: "Create a task or update the existing task with the same name. Updates command, " +
			"description, priority, project, technical specs and acceptance criteria in place without " +
			"resetting the task's workflow progress. Check the project's .tasks file before creating " +
			"tasks to avoid duplicates.",
		InputSchema: createSchema(map[string]any{
			"name":                stringProperty("Task name used as the upsert key"),
			"command":             defaultStringProperty(),
			"description":         defaultStringProperty(),
			"project_id":          stringProperty("Project id. Use list_projects to discover valid ids"),
			"priority":            stringProperty("One of: low, normal, high, critical"),
			"technical_specs":     defaultStringProperty(),
			"acceptance_criteria": arrayProperty("Conditions that must hold for the task to be accepted", "string"),
		}, []string{"name", "command", "project_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		Name               string   `json:"name"`
		Command            string   `json:"command"`
		Description        string   `json:"description"`
		ProjectID          string   `json:"project_id"`
		Priority           string   `json:"priority"`
		TechnicalSpecs     string   `json:"technical_specs"`
		AcceptanceCriteria []string `json:"acceptance_criteria"`
	}) (*mcp.CallToolResult, any, error) {
		projectID, err := uuid.Parse(args.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		taskReq := &models.SubmitTaskRequest{
			Name:               args.Name,
			Command:            args.Command,
			Description:        args.Description,
			ProjectID:          projectID,
			Priority:           args.Priority,
			TechnicalSpecs:     args.TechnicalSpecs,
			AcceptanceCriteria: args.AcceptanceCriteria,
		}
		result, err := t.TaskToolset.UpsertTask(ctx, taskReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "get_task",
		Description: "Get detailed information about a task, including its effective status, phase " +
			"history, development workflow state, and dynamic workflow instructions describing what " +
			"to do next in the current phase.",
		InputSchema: createSchema(map[string]any{
			"task_id": stringProperty("Use list_tasks to discover valid ids"),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID string `json:"task_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.GetTask(ctx, args.TaskID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterListTasks(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "list_tasks",
		Description: "List tasks, optionally filtered by project and effective status. Statuses: " +
			"pending, running, completed, failed, cancelled, planning, implementation, test_creation, " +
			"testing, ai_review, finalized.",
		InputSchema: createSchema(map[string]any{
			"project_id": stringProperty("Only tasks of this project"),
			"status":     stringProperty("Only tasks whose effective status matches"),
		}, nil),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		ProjectID string `json:"project_id"`
		Status    string `json:"status"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.ListTasks(ctx, args.ProjectID, args.Status)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterUpdateTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "update_task",
		Description: "Partially update a task. Only the provided fields change. A status change is " +
			"validated against the workflow transition table; skipping phases is rejected.",
		InputSchema: createSchema(map[string]any{
			"task_id":         defaultStringProperty(),
			"name":            defaultStringProperty(),
			"command":         defaultStringProperty(),
			"description":     defaultStringProperty(),
			"technical_specs": defaultStringProperty(),
			"priority":        stringProperty("One of: low, normal, high, critical"),
			"status":          stringProperty("New status, validated against the transition table"),
			"project_id":      defaultStringProperty(),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID         string `json:"task_id"`
		Name           string `json:"name"`
		Command        string `json:"command"`
		Description    string `json:"description"`
		TechnicalSpecs string `json:"technical_specs"`
		Priority       string `json:"priority"`
		Status         string `json:"status"`
		ProjectID      string `json:"project_id"`
	}) (*mcp.CallToolResult, any, error) {
		updateReq := &models.UpdateTaskRequest{}
		if args.Name != "" {
			updateReq.Name = &args.Name
		}
		if args.Command != "" {
			updateReq.Command = &args.Command
		}
		if args.Description != "" {
			updateReq.Description = &args.Description
		}
		if args.TechnicalSpecs != "" {
			updateReq.TechnicalSpecs = &args.TechnicalSpecs
		}
		if args.Priority != "" {
			updateReq.Priority = &args.Priority
		}
		if args.Status != "" {
			updateReq.Status = &args.Status
		}
		if args.ProjectID != "" {
			projectID, err := uuid.Parse(args.ProjectID)
			if err != nil {
				return nil, nil, err
			}
			updateReq.ProjectID = &projectID
		}
		result, err := t.TaskToolset.UpdateTask(ctx, args.TaskID, updateReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterRetryTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "retry_task",
		Description: "Put a failed task back in the queue. Clears the previous result and bumps the " +
			"retry counter unless reset_retry_count is set.",
		InputSchema: createSchema(map[string]any{
			"task_id":           defaultStringProperty(),
			"reset_retry_count": boolProperty("Reset the retry counter to zero instead of incrementing it"),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID          string `json:"task_id"`
		ResetRetryCount bool   `json:"reset_retry_count"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.RetryTask(ctx, args.TaskID, args.ResetRetryCount)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterCancelTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "cancel_task",
		Description: "Cancel a task that has not finished yet. The reason is recorded in the task result.",
		InputSchema: createSchema(map[string]any{
			"task_id": defaultStringProperty(),
			"reason":  stringProperty("Why the task is being cancelled"),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID string `json:"task_id"`
		Reason string `json:"reason"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.CancelTask(ctx, args.TaskID, args.Reason)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterDeleteTask(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task entirely. The task record and its workflow state are removed.",
		InputSchema: createSchema(map[string]any{
			"task_id": defaultStringProperty(),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID string `json:"task_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.DeleteTask(ctx, args.TaskID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterAddDependency(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "add_dependency",
		Description: "Make one task depend on another. The condition says which upstream outcome " +
			"satisfies the dependency (Success, Failure or Completion). An optional correlation id " +
			"groups related dependencies.",
		InputSchema: createSchema(map[string]any{
			"task_id":        stringProperty("The dependent task"),
			"depends_on":     stringProperty("The upstream task id"),
			"condition":      stringProperty("One of: Success, Failure, Completion (default Success)"),
			"required":       boolProperty("Whether the dependency blocks readiness (default true)"),
			"correlation_id": stringProperty("Optional id to group related dependencies"),
		}, []string{"task_id", "depends_on"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID        string `json:"task_id"`
		DependsOn     string `json:"depends_on"`
		Condition     string `json:"condition"`
		Required      *bool  `json:"required"`
		CorrelationID string `json:"correlation_id"`
	}) (*mcp.CallToolResult, any, error) {
		dependsOn, err := uuid.Parse(args.DependsOn)
		if err != nil {
			return nil, nil, err
		}
		depReq := &models.AddDependencyRequest{
			TaskID:        dependsOn,
			Required:      args.Required,
			CorrelationID: args.CorrelationID,
		}
		if args.Condition != "" {
			var condition taskqueue.DependencyCondition
			switch args.Condition {
			case "Success":
				condition = taskqueue.ConditionSuccess
			case "Failure":
				condition = taskqueue.ConditionFailure
			case "Completion":
				condition = taskqueue.ConditionCompletion
			default:
				return nil, nil, fmt.Errorf("unknown dependency condition %q", args.Condition)
			}
			depReq.Condition = &condition
		}
		result, err := t.TaskToolset.AddDependency(ctx, args.TaskID, depReq)
		return handleToolResult(result, err)
	})
}
