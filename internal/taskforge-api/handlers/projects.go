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

// CreateProject handles POST /projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var req models.CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	project, err := h.services.ProjectService.Create(r.Context(), req.ToProject())
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, project)
}

// ListProjects handles GET /projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects := h.services.ProjectService.List(r.Context())
	writeJSONResponse(w, http.StatusOK, models.ProjectListResponse{Projects: projects, Count: len(projects)})
}

// GetProject handles GET /projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	project, err := h.services.ProjectService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, project)
}

// UpdateProject handles PUT /projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), services.CodeValidationError)
		return
	}

	update := services.ProjectUpdate{
		Name:             req.Name,
		Description:      req.Description,
		GitRepositoryURL: req.GitRepositoryURL,
		DirectoryPath:    req.DirectoryPath,
		Tags:             req.Tags,
		DueDate:          req.DueDate,
		Metadata:         req.Metadata,
	}
	if req.Status != nil {
		status, _ := taskqueue.ParseProjectStatus(*req.Status)
		update.Status = &status
	}
	project, err := h.services.ProjectService.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.services.ProjectService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProjectTasks handles GET /projects/{id}/tasks
func (h *Handler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tasks, err := h.services.ProjectService.Tasks(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.TaskListResponse{Tasks: tasks, Count: len(tasks)})
}
