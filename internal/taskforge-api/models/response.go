// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/taskqueue"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SubmitTaskResponse acknowledges a task submission.
type SubmitTaskResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Status string    `json:"status"`
}

// StatusSubmitted is the acknowledgement status for accepted submissions.
const StatusSubmitted = "submitted"

// UpsertTaskResponse acknowledges an upsert, reporting whether the task was
// created or updated in place.
type UpsertTaskResponse struct {
	TaskID  uuid.UUID `json:"task_id"`
	Created bool      `json:"created"`
	Status  string    `json:"status"`
}

// TaskListResponse wraps a task listing.
type TaskListResponse struct {
	Tasks []*taskqueue.Task `json:"tasks"`
	Count int               `json:"count"`
}

// ProjectListResponse wraps a project listing.
type ProjectListResponse struct {
	Projects []*taskqueue.Project `json:"projects"`
	Count    int                  `json:"count"`
}

// WorkflowListResponse wraps a workflow listing.
type WorkflowListResponse struct {
	Workflows []*taskqueue.Workflow `json:"workflows"`
	Count     int                   `json:"count"`
}

// TaskStatusResponse reports a task's effective status.
type TaskStatusResponse struct {
	TaskID uuid.UUID            `json:"task_id"`
	Status taskqueue.TaskStatus `json:"status"`
}

// TaskResultResponse carries a task's result. Result is null while the task
// has not finished.
type TaskResultResponse struct {
	TaskID uuid.UUID             `json:"task_id"`
	Result *taskqueue.TaskResult `json:"result"`
}

// DependencyListResponse wraps a task's dependency listing.
type DependencyListResponse struct {
	TaskID       uuid.UUID              `json:"task_id"`
	Dependencies []taskqueue.Dependency `json:"dependencies"`
	Count        int                    `json:"count"`
}

// WorkflowStatusResponse reports a workflow's status.
type WorkflowStatusResponse struct {
	WorkflowID uuid.UUID                `json:"workflow_id"`
	Status     taskqueue.WorkflowStatus `json:"status"`
}

// CorrelationsResponse lists the correlation ids across a task's
// dependencies.
type CorrelationsResponse struct {
	TaskID         uuid.UUID `json:"task_id"`
	CorrelationIDs []string  `json:"correlation_ids"`
}

// WorkflowProgressResponse reports the development workflow state of a task.
type WorkflowProgressResponse struct {
	TaskID             uuid.UUID                   `json:"task_id"`
	Status             taskqueue.TaskStatus        `json:"status"`
	WorkflowStatus     taskqueue.DevWorkflowStatus `json:"workflow_status"`
	Progress           float64                     `json:"progress"`
	AIReviewsCompleted int                         `json:"ai_reviews_completed"`
	AIReviewsRequired  int                         `json:"ai_reviews_required"`
}

// WorkflowProgressFrom builds the progress view of a task.
func WorkflowProgressFrom(task *taskqueue.Task) WorkflowProgressResponse {
	resp := WorkflowProgressResponse{
		TaskID:             task.ID,
		Status:             task.EffectiveStatus(),
		Progress:           task.PhaseProgress(),
		AIReviewsCompleted: task.AIReviewsCompleted,
		AIReviewsRequired:  task.AIReviewsRequired,
	}
	if task.Workflow != nil {
		resp.WorkflowStatus = task.Workflow.Status
	}
	return resp
}
