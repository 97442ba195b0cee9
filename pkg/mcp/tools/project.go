// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
)

func (t *Toolsets) RegisterCreateProject(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "create_project",
		Description: "Create a new project to group related tasks. When a directory path is given, a " +
			".tasks ledger file is written there so agents can check for existing tasks before " +
			"creating new ones.",
		InputSchema: createSchema(map[string]any{
			"name":               stringProperty("Project name"),
			"description":        stringProperty("Human-readable description"),
			"git_repository_url": stringProperty("URL of the project's git repository"),
			"directory_path":     stringProperty("Local directory where the .tasks ledger is written"),
		}, []string{"name"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		Name             string `json:"name"`
		Description      string `json:"description"`
		GitRepositoryURL string `json:"git_repository_url"`
		DirectoryPath    string `json:"directory_path"`
	}) (*mcp.CallToolResult, any, error) {
		projectReq := &models.CreateProjectRequest{
			Name:             args.Name,
			Description:      args.Description,
			GitRepositoryURL: args.GitRepositoryURL,
			DirectoryPath:    args.DirectoryPath,
		}
		result, err := t.ProjectToolset.CreateProject(ctx, projectReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetProject(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_project",
		Description: "Get a project by id, including its status, tags and due date.",
		InputSchema: createSchema(map[string]any{
			"project_id": defaultStringProperty(),
		}, []string{"project_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		ProjectID string `json:"project_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.ProjectToolset.GetProject(ctx, args.ProjectID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetProjectTasks(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_project_tasks",
		Description: "List the tasks belonging to a project, oldest first.",
		InputSchema: createSchema(map[string]any{
			"project_id": defaultStringProperty(),
		}, []string{"project_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		ProjectID string `json:"project_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.ProjectToolset.GetProjectTasks(ctx, args.ProjectID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterListProjects(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_projects",
		Description: "List all projects with their ids, names and directories.",
		InputSchema: createSchema(map[string]any{}, nil),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		result, err := t.ProjectToolset.ListProjects(ctx)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterUpdateProject(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "update_project",
		Description: "Partially update a project. Only the provided fields change.",
		InputSchema: createSchema(map[string]any{
			"project_id":         defaultStringProperty(),
			"name":               defaultStringProperty(),
			"description":        defaultStringProperty(),
			"status":             stringProperty("One of: Planning, Active, OnHold, Completed, Cancelled"),
			"git_repository_url": defaultStringProperty(),
			"directory_path":     defaultStringProperty(),
			"tags":               arrayProperty("Replacement tag list", "string"),
		}, []string{"project_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		ProjectID        string   `json:"project_id"`
		Name             string   `json:"name"`
		Description      string   `json:"description"`
		Status           string   `json:"status"`
		GitRepositoryURL string   `json:"git_repository_url"`
		DirectoryPath    string   `json:"directory_path"`
		Tags             []string `json:"tags"`
	}) (*mcp.CallToolResult, any, error) {
		updateReq := &models.UpdateProjectRequest{}
		if args.Name != "" {
			updateReq.Name = &args.Name
		}
		if args.Description != "" {
			updateReq.Description = &args.Description
		}
		if args.Status != "" {
			updateReq.Status = &args.Status
		}
		if args.GitRepositoryURL != "" {
			updateReq.GitRepositoryURL = &args.GitRepositoryURL
		}
		if args.DirectoryPath != "" {
			updateReq.DirectoryPath = &args.DirectoryPath
		}
		if args.Tags != nil {
			updateReq.Tags = &args.Tags
		}
		result, err := t.ProjectToolset.UpdateProject(ctx, args.ProjectID, updateReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterDeleteProject(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "delete_project",
		Description: "Delete a project. Its tasks keep existing but lose their project association.",
		InputSchema: createSchema(map[string]any{
			"project_id": defaultStringProperty(),
		}, []string{"project_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		ProjectID string `json:"project_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.ProjectToolset.DeleteProject(ctx, args.ProjectID)
		return handleToolResult(result, err)
	})
}
