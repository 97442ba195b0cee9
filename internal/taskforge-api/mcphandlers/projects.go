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

func (h *MCPHandler) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return h.services.ProjectService.Create(ctx, req.ToProject())
}

func (h *MCPHandler) GetProject(ctx context.Context, projectID string) (any, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}
	return h.services.ProjectService.Get(ctx, id)
}

func (h *MCPHandler) GetProjectTasks(ctx context.Context, projectID string) (any, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := h.services.ProjectService.Tasks(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.TaskListResponse{Tasks: tasks, Count: len(tasks)}, nil
}

func (h *MCPHandler) ListProjects(ctx context.Context) (any, error) {
	projects := h.services.ProjectService.List(ctx)
	return models.ProjectListResponse{Projects: projects, Count: len(projects)}, nil
}

func (h *MCPHandler) UpdateProject(ctx context.Context, projectID string, req *models.UpdateProjectRequest) (any, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
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
	return h.services.ProjectService.Update(ctx, id, update)
}

func (h *MCPHandler) DeleteProject(ctx context.Context, projectID string) (any, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}
	if err := h.services.ProjectService.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]string{"project_id": projectID, "status": "deleted"}, nil
}

var _ tools.ProjectToolsetHandler = (*MCPHandler)(nil)
