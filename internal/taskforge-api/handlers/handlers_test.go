// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/storage"
	"github.com/taskforge/taskforge/internal/taskforge-api/metrics"
	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
	"github.com/taskforge/taskforge/internal/taskforge-api/tracking"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.Default()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := metrics.New()
	svcs, err := services.NewServices(store, tracking.New(logger), nil, nil, m, logger)
	require.NoError(t, err)
	return New(svcs, nil, m, logger).Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createProject(t *testing.T, handler http.Handler, name string) uuid.UUID {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/projects", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code)
	project := decodeResponse[taskqueue.Project](t, rec)
	return project.ID
}

func submitTask(t *testing.T, handler http.Handler, name string, projectID uuid.UUID) uuid.UUID {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/tasks", map[string]any{
		"name":       name,
		"command":    "echo hello",
		"project_id": projectID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[models.SubmitTaskResponse](t, rec)
	return resp.TaskID
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeResponse[map[string]string](t, rec)["status"])
}

func TestSubmitTaskEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")

	taskID := submitTask(t, handler, "build", projectID)

	rec := doJSON(t, handler, http.MethodGet, "/tasks/"+taskID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeResponse[taskqueue.Task](t, rec)
	assert.Equal(t, "build", task.Name)
	assert.Equal(t, taskqueue.StatusPlanning, task.EffectiveStatus())
	assert.Equal(t, projectID, task.ProjectID)
}

func TestSubmitTaskValidationErrors(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")

	tests := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{
			name:     "missing name",
			body:     map[string]any{"command": "echo", "project_id": projectID},
			wantCode: services.CodeValidationError,
		},
		{
			name:     "missing command",
			body:     map[string]any{"name": "x", "project_id": projectID},
			wantCode: services.CodeValidationError,
		},
		{
			name:     "unknown project",
			body:     map[string]any{"name": "x", "command": "echo", "project_id": uuid.New()},
			wantCode: services.CodeInvalidTask,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeResponse[models.ErrorBody](t, rec).Error)
		})
	}
}

func TestGetTaskNotFound(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.CodeTaskNotFound, decodeResponse[models.ErrorBody](t, rec).Error)

	rec = doJSON(t, handler, http.MethodGet, "/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeInvalidInput, decodeResponse[models.ErrorBody](t, rec).Error)
}

func TestListTasksFilterEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	alpha := createProject(t, handler, "alpha")
	beta := createProject(t, handler, "beta")
	submitTask(t, handler, "one", alpha)
	submitTask(t, handler, "two", alpha)
	submitTask(t, handler, "three", beta)

	rec := doJSON(t, handler, http.MethodGet, "/tasks?project_id="+alpha.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeResponse[models.TaskListResponse](t, rec).Count)

	rec = doJSON(t, handler, http.MethodGet, "/tasks?status=planning", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeResponse[models.TaskListResponse](t, rec).Count)

	rec = doJSON(t, handler, http.MethodGet, "/tasks?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelAndRetryEndpoints(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "flaky", projectID)

	rec := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/cancel", taskID), map[string]any{"reason": "superseded"})
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeResponse[taskqueue.Task](t, rec)
	assert.Equal(t, taskqueue.StatusCancelled, task.EffectiveStatus())
	require.NotNil(t, task.Result)
	require.NotNil(t, task.Result.Cancelled)
	assert.Equal(t, "superseded", task.Result.Cancelled.Reason)

	// Cancelling again is a no-op, the original reason is preserved
	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/cancel", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task = decodeResponse[taskqueue.Task](t, rec)
	assert.Equal(t, taskqueue.StatusCancelled, task.EffectiveStatus())
	require.NotNil(t, task.Result)
	assert.Equal(t, "superseded", task.Result.Cancelled.Reason)

	// A failed task can be retried back to pending
	failedID := submitTask(t, handler, "flaky-2", projectID)
	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%s/status", failedID), map[string]any{"status": "failed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/retry", failedID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task = decodeResponse[taskqueue.Task](t, rec)
	assert.Equal(t, taskqueue.StatusPending, task.EffectiveStatus())
	assert.Nil(t, task.Result)
}

func TestTaskStatusAndResultEndpoints(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "job", projectID)

	rec := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%s/status", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeResponse[models.TaskStatusResponse](t, rec)
	assert.Equal(t, taskID, status.TaskID)
	assert.Equal(t, taskqueue.StatusPlanning, status.Status)

	// Result is null until the task reaches a terminal status
	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%s/result", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeResponse[models.TaskResultResponse](t, rec).Result)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/cancel", taskID), map[string]any{"reason": "obsolete"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%s/result", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeResponse[models.TaskResultResponse](t, rec)
	require.NotNil(t, result.Result)
	require.NotNil(t, result.Result.Cancelled)
	assert.Equal(t, "obsolete", result.Result.Cancelled.Reason)
}

func TestSetTaskPriorityEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "job", projectID)

	rec := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%s/priority", taskID), map[string]any{"priority": "high"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, taskqueue.PriorityHigh, decodeResponse[taskqueue.Task](t, rec).Priority)

	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%s/priority", taskID), map[string]any{"priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeValidationError, decodeResponse[models.ErrorBody](t, rec).Error)
}

func TestAdvancePhaseEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "job", projectID)

	rec := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/advance-phase", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeResponse[taskqueue.Task](t, rec)
	assert.Equal(t, taskqueue.StatusInImplementation, task.EffectiveStatus())
}

func TestTaskDependenciesEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "downstream", projectID)
	upstreamID := submitTask(t, handler, "upstream", projectID)

	rec := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%s/dependencies", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deps := decodeResponse[models.DependencyListResponse](t, rec)
	assert.Equal(t, 0, deps.Count)
	assert.NotNil(t, deps.Dependencies)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/dependencies", taskID), map[string]any{"task_id": upstreamID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%s/dependencies", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deps = decodeResponse[models.DependencyListResponse](t, rec)
	require.Equal(t, 1, deps.Count)
	assert.Equal(t, upstreamID, deps.Dependencies[0].TaskID)
	assert.True(t, deps.Dependencies[0].Required)
}

func TestDevelopmentWorkflowEndpoints(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "feature", projectID)
	advance := fmt.Sprintf("/tasks/%s/workflow/advance", taskID)

	// Documentation can be recorded before the workflow starts
	rec := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%s/workflow/documentation", taskID), map[string]any{"path": "docs/feature.md"})
	require.Equal(t, http.StatusOK, rec.Code)
	task := decodeResponse[taskqueue.Task](t, rec)
	require.NotNil(t, task.Workflow)
	assert.Equal(t, "docs/feature.md", task.Workflow.TechnicalDocumentationPath)

	// Start the workflow, entering the planning phase
	rec = doJSON(t, handler, http.MethodPost, advance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task = decodeResponse[taskqueue.Task](t, rec)
	require.NotNil(t, task.Workflow)
	assert.Equal(t, taskqueue.DevPlanning, task.Workflow.Status)

	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%s/workflow/documentation", taskID), map[string]any{"path": "docs/feature.md"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, advance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task = decodeResponse[taskqueue.Task](t, rec)
	assert.Equal(t, taskqueue.DevInImplementation, task.Workflow.Status)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%s/workflow", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decodeResponse[models.WorkflowProgressResponse](t, rec)
	assert.Equal(t, taskID, progress.TaskID)
	assert.Equal(t, taskqueue.DevInImplementation, progress.WorkflowStatus)
}

func TestCoverageEndpointRejectsOutOfRange(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	taskID := submitTask(t, handler, "feature", projectID)

	rec := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/tasks/%s/workflow/advance", taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%s/workflow/coverage", taskID), map[string]any{"coverage": 1.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeValidationError, decodeResponse[models.ErrorBody](t, rec).Error)
}

func TestProjectEndpoints(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	submitTask(t, handler, "one", projectID)

	// New projects start out in planning
	rec := doJSON(t, handler, http.MethodGet, "/projects/"+projectID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, taskqueue.ProjectPlanning, decodeResponse[taskqueue.Project](t, rec).Status)

	rec = doJSON(t, handler, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeResponse[models.ProjectListResponse](t, rec).Count)

	rec = doJSON(t, handler, http.MethodPut, "/projects/"+projectID.String(), map[string]any{
		"description": "updated",
		"status":      "Active",
		"tags":        []string{"backend"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	project := decodeResponse[taskqueue.Project](t, rec)
	assert.Equal(t, "updated", project.Description)
	assert.Equal(t, taskqueue.ProjectActive, project.Status)
	assert.Equal(t, []string{"backend"}, project.Tags)

	rec = doJSON(t, handler, http.MethodPut, "/projects/"+projectID.String(), map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeValidationError, decodeResponse[models.ErrorBody](t, rec).Error)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/projects/%s/tasks", projectID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeResponse[models.TaskListResponse](t, rec).Count)

	rec = doJSON(t, handler, http.MethodDelete, "/projects/"+projectID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/projects/"+projectID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.CodeProjectNotFound, decodeResponse[models.ErrorBody](t, rec).Error)
}

func TestWorkflowEndpoints(t *testing.T) {
	handler := newTestHandler(t)

	body := map[string]any{
		"name": "pipeline",
		"tasks": []map[string]any{
			{"name": "build", "command": "make build"},
			{"name": "test", "command": "make test"},
		},
		"dependencies": []map[string]any{
			{"from_task": "build", "to_task": "test"},
		},
	}
	rec := doJSON(t, handler, http.MethodPost, "/workflows", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	wf := decodeResponse[taskqueue.Workflow](t, rec)
	assert.Equal(t, taskqueue.WorkflowPending, wf.Status)
	assert.Len(t, wf.Tasks, 2)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/workflows/%s/status", wf.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeResponse[models.WorkflowStatusResponse](t, rec)
	assert.Equal(t, wf.ID, status.WorkflowID)
	assert.Equal(t, taskqueue.WorkflowPending, status.Status)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/workflows/%s/approve", wf.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, taskqueue.WorkflowRunning, decodeResponse[taskqueue.Workflow](t, rec).Status)

	// Only pending workflows can be approved
	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/workflows/%s/approve", wf.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeInvalidTransition, decodeResponse[models.ErrorBody](t, rec).Error)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/workflows/%s/cancel", wf.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, taskqueue.WorkflowCancelled, decodeResponse[taskqueue.Workflow](t, rec).Status)
}

func TestWorkflowCycleRejected(t *testing.T) {
	handler := newTestHandler(t)

	body := map[string]any{
		"name": "loop",
		"tasks": []map[string]any{
			{"name": "a", "command": "echo a"},
			{"name": "b", "command": "echo b"},
		},
		"dependencies": []map[string]any{
			{"from_task": "a", "to_task": "b"},
			{"from_task": "b", "to_task": "a"},
		},
	}
	rec := doJSON(t, handler, http.MethodPost, "/workflows", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeCircularDep, decodeResponse[models.ErrorBody](t, rec).Error)
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	projectID := createProject(t, handler, "alpha")
	submitTask(t, handler, "one", projectID)
	submitTask(t, handler, "two", projectID)

	rec := doJSON(t, handler, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeResponse[services.QueueStats](t, rec)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.TotalProjects)
	assert.Equal(t, 2, stats.TasksByStatus["planning"])
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
