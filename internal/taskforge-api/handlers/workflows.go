// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/taskforge/taskforge/internal/server/middleware/logger"
	"github.com/taskforge/taskforge/internal/taskforge-api/models"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

// SubmitWorkflow handles POST /workflows
func (h *Handler) SubmitWorkflow(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var req models.SubmitWorkflowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}
	wf, err := req.ToWorkflow()
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeInvalidWorkflow)
		return
	}

	wf, err = h.services.WorkflowService.Submit(r.Context(), wf)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, wf)
}

// ListWorkflows handles GET /workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows := h.services.WorkflowService.List(r.Context())
	writeJSONResponse(w, http.StatusOK, models.WorkflowListResponse{Workflows: workflows, Count: len(workflows)})
}

// GetWorkflow handles GET /workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	wf, err := h.services.WorkflowService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wf)
}

// GetWorkflowStatus handles GET /workflows/{id}/status
func (h *Handler) GetWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	wf, err := h.services.WorkflowService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.WorkflowStatusResponse{
		WorkflowID: wf.ID,
		Status:     wf.Status,
	})
}

// CancelWorkflow handles POST /workflows/{id}/cancel
func (h *Handler) CancelWorkflow(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	wf, err := h.services.WorkflowService.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wf)
}

// ApproveWorkflow handles POST /workflows/{id}/approve
func (h *Handler) ApproveWorkflow(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	wf, err := h.services.WorkflowService.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wf)
}

// UpdateWorkflowStatus handles PUT /workflows/{id}/status
func (h *Handler) UpdateWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateWorkflowStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}
	status, _ := taskqueue.ParseWorkflowStatus(req.Status)

	wf, err := h.services.WorkflowService.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wf)
}
