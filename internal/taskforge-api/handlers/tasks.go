// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/server/middleware/logger"
	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

// SubmitTask handles POST /tasks
func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var req models.SubmitTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	task, err := h.services.TaskService.Submit(r.Context(), req.ToTask())
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SubmitTaskResponse{
		TaskID: task.ID,
		Status: models.StatusSubmitted,
	})
}

// UpsertTask handles POST /tasks/upsert
func (h *Handler) UpsertTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var req models.SubmitTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	task, created, err := h.services.TaskService.Upsert(r.Context(), req.ToTask())
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSONResponse(w, status, models.UpsertTaskResponse{
		TaskID:  task.ID,
		Created: created,
		Status:  models.StatusSubmitted,
	})
}

// GetTask handles GET /tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.services.TaskService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// ListTasks handles GET /tasks with optional project_id and status filters
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	filter := services.TaskFilter{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "invalid project_id", services.CodeInvalidInput)
			return
		}
		filter.ProjectID = id
	}

	tasks, err := h.services.TaskService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.TaskListResponse{Tasks: tasks, Count: len(tasks)})
}

// UpdateTask handles PUT /tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
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
			writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
			return
		}
		update.Status = &status
	}

	task, err := h.services.TaskService.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.services.TaskService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetryTask handles POST /tasks/{id}/retry
func (h *Handler) RetryTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	// The body is optional, an empty body means keep the retry count.
	var req models.RetryTaskRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	task, err := h.services.TaskService.Retry(r.Context(), id, req.ResetRetryCount)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// CancelTask handles POST /tasks/{id}/cancel
func (h *Handler) CancelTask(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CancelTaskRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	task, err := h.services.TaskService.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// SetTaskStatus handles PUT /tasks/{id}/status
func (h *Handler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SetStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}
	status, _ := taskqueue.ParseTaskStatus(req.Status)

	task, err := h.services.TaskService.SetStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// GetTaskStatus handles GET /tasks/{id}/status
func (h *Handler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.services.TaskService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.TaskStatusResponse{
		TaskID: task.ID,
		Status: task.EffectiveStatus(),
	})
}

// GetTaskResult handles GET /tasks/{id}/result
func (h *Handler) GetTaskResult(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.services.TaskService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.TaskResultResponse{
		TaskID: task.ID,
		Result: task.Result,
	})
}

// SetTaskPriority handles PUT /tasks/{id}/priority
func (h *Handler) SetTaskPriority(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SetPriorityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}
	priority, _ := taskqueue.ParseTaskPriority(req.Priority)

	task, err := h.services.TaskService.SetPriority(r.Context(), id, priority)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// AdvanceTaskPhase handles POST /tasks/{id}/advance-phase
func (h *Handler) AdvanceTaskPhase(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.services.TaskService.AdvancePhase(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// GetTaskDependencies handles GET /tasks/{id}/dependencies
func (h *Handler) GetTaskDependencies(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deps, err := h.services.TaskService.Dependencies(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	if deps == nil {
		deps = []taskqueue.Dependency{}
	}
	writeJSONResponse(w, http.StatusOK, models.DependencyListResponse{
		TaskID:       id,
		Dependencies: deps,
		Count:        len(deps),
	})
}

// AddTaskDependency handles POST /tasks/{id}/dependencies
func (h *Handler) AddTaskDependency(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.AddDependencyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	task, err := h.services.TaskService.AddDependency(r.Context(), id, req.ToDependency())
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// GetTaskCorrelations handles GET /tasks/{id}/correlations
func (h *Handler) GetTaskCorrelations(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ids, err := h.services.TaskService.Correlations(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.CorrelationsResponse{TaskID: id, CorrelationIDs: ids})
}

// AdvanceTaskWorkflow handles POST /tasks/{id}/workflow/advance
func (h *Handler) AdvanceTaskWorkflow(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.services.TaskService.AdvanceWorkflow(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// SetTaskDocumentation handles PUT /tasks/{id}/workflow/documentation
func (h *Handler) SetTaskDocumentation(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SetDocumentationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	task, err := h.services.TaskService.SetTechnicalDocumentation(r.Context(), id, req.Path)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// SetTaskCoverage handles PUT /tasks/{id}/workflow/coverage
func (h *Handler) SetTaskCoverage(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SetCoverageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	task, err := h.services.TaskService.SetTestCoverage(r.Context(), id, *req.Coverage)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// AddTaskReview handles POST /tasks/{id}/workflow/reviews
func (h *Handler) AddTaskReview(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.AddReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	task, err := h.services.TaskService.AddAIReviewReport(r.Context(), id, req.ToReview())
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, task)
}

// GetTaskWorkflow handles GET /tasks/{id}/workflow
func (h *Handler) GetTaskWorkflow(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.services.TaskService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.WorkflowProgressFrom(task))
}
