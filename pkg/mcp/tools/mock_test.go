// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
)

// MockToolsetHandler implements all toolset handler interfaces for testing.
type MockToolsetHandler struct {
	// Track which methods were called and with what parameters
	calls map[string][]interface{}
}

func NewMockToolsetHandler() *MockToolsetHandler {
	return &MockToolsetHandler{
		calls: make(map[string][]interface{}),
	}
}

func (m *MockToolsetHandler) recordCall(method string, args ...interface{}) {
	m.calls[method] = append(m.calls[method], args)
}

// TaskToolsetHandler methods

func (m *MockToolsetHandler) SubmitTask(ctx context.Context, req *models.SubmitTaskRequest) (any, error) {
	m.recordCall("SubmitTask", req)
	return `{"task_id":"t1","status":"submitted"}`, nil
}

func (m *MockToolsetHandler) UpsertTask(ctx context.Context, req *models.SubmitTaskRequest) (any, error) {
	m.recordCall("UpsertTask", req)
	return `{"task_id":"t1","created":true}`, nil
}

func (m *MockToolsetHandler) GetTask(ctx context.Context, taskID string) (any, error) {
	m.recordCall("GetTask", taskID)
	return `{"task_id":"t1"}`, nil
}

func (m *MockToolsetHandler) ListTasks(ctx context.Context, projectID, status string) (any, error) {
	m.recordCall("ListTasks", projectID, status)
	return `{"tasks":[],"count":0}`, nil
}

func (m *MockToolsetHandler) UpdateTask(ctx context.Context, taskID string, req *models.UpdateTaskRequest) (any, error) {
	m.recordCall("UpdateTask", taskID, req)
	return `{"task_id":"t1"}`, nil
}

func (m *MockToolsetHandler) RetryTask(ctx context.Context, taskID string, resetRetryCount bool) (any, error) {
	m.recordCall("RetryTask", taskID, resetRetryCount)
	return `{"task_id":"t1","status":"pending"}`, nil
}

func (m *MockToolsetHandler) CancelTask(ctx context.Context, taskID, reason string) (any, error) {
	m.recordCall("CancelTask", taskID, reason)
	return `{"task_id":"t1","status":"cancelled"}`, nil
}

func (m *MockToolsetHandler) DeleteTask(ctx context.Context, taskID string) (any, error) {
	m.recordCall("DeleteTask", taskID)
	return `{"task_id":"t1","status":"deleted"}`, nil
}

func (m *MockToolsetHandler) AddDependency(ctx context.Context, taskID string, req *models.AddDependencyRequest) (any, error) {
	m.recordCall("AddDependency", taskID, req)
	return `{"task_id":"t1"}`, nil
}

func (m *MockToolsetHandler) AdvanceWorkflowPhase(ctx context.Context, taskID string) (any, error) {
	m.recordCall("AdvanceWorkflowPhase", taskID)
	return `{"task_id":"t1","workflow_status":"planning"}`, nil
}

func (m *MockToolsetHandler) SetTechnicalDocumentation(ctx context.Context, taskID, path string) (any, error) {
	m.recordCall("SetTechnicalDocumentation", taskID, path)
	return `{"task_id":"t1"}`, nil
}

func (m *MockToolsetHandler) SetTestCoverage(ctx context.Context, taskID string, coverage float64) (any, error) {
	m.recordCall("SetTestCoverage", taskID, coverage)
	return `{"task_id":"t1"}`, nil
}

func (m *MockToolsetHandler) AddAIReviewReport(ctx context.Context, taskID string, req *models.AddReviewRequest) (any, error) {
	m.recordCall("AddAIReviewReport", taskID, req)
	return `{"task_id":"t1"}`, nil
}

func (m *MockToolsetHandler) GetPhaseProgress(ctx context.Context, taskID string) (any, error) {
	m.recordCall("GetPhaseProgress", taskID)
	return `{"task_id":"t1","progress":0}`, nil
}

// ProjectToolsetHandler methods

func (m *MockToolsetHandler) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (any, error) {
	m.recordCall("CreateProject", req)
	return `{"name":"new-project"}`, nil
}

func (m *MockToolsetHandler) GetProject(ctx context.Context, projectID string) (any, error) {
	m.recordCall("GetProject", projectID)
	return `{"id":"p1","name":"new-project"}`, nil
}

func (m *MockToolsetHandler) GetProjectTasks(ctx context.Context, projectID string) (any, error) {
	m.recordCall("GetProjectTasks", projectID)
	return `{"tasks":[],"count":0}`, nil
}

func (m *MockToolsetHandler) ListProjects(ctx context.Context) (any, error) {
	m.recordCall("ListProjects")
	return `{"projects":[],"count":0}`, nil
}

func (m *MockToolsetHandler) UpdateProject(ctx context.Context, projectID string, req *models.UpdateProjectRequest) (any, error) {
	m.recordCall("UpdateProject", projectID, req)
	return `{"name":"updated-project"}`, nil
}

func (m *MockToolsetHandler) DeleteProject(ctx context.Context, projectID string) (any, error) {
	m.recordCall("DeleteProject", projectID)
	return `{"status":"deleted"}`, nil
}

// WorkflowToolsetHandler methods

func (m *MockToolsetHandler) SubmitWorkflow(ctx context.Context, req *models.SubmitWorkflowRequest) (any, error) {
	m.recordCall("SubmitWorkflow", req)
	return `{"workflow_id":"w1","status":"pending"}`, nil
}

func (m *MockToolsetHandler) GetWorkflowStatus(ctx context.Context, workflowID string) (any, error) {
	m.recordCall("GetWorkflowStatus", workflowID)
	return `{"workflow_id":"w1"}`, nil
}

func (m *MockToolsetHandler) GetQueueStats(ctx context.Context) (any, error) {
	m.recordCall("GetQueueStats")
	return `{"total_tasks":0}`, nil
}
