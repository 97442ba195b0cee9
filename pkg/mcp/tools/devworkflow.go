// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskforge/taskforge/internal/taskforge-api/models"
)

func (t *Toolsets) RegisterAdvanceWorkflowPhase(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "advance_workflow_phase",
		Description: "Advance a task to the next development workflow phase. The workflow follows " +
			"NotStarted -> Planning -> Implementation -> TestCreation -> Testing -> AIReview -> Completed, " +
			"one step per call. The AIReview to Completed step requires the configured number of AI " +
			"review approvals. Returns the new workflow status and the instructions for the next phase. " +
			"Only call this when the current phase requirements are fully satisfied.",
		InputSchema: createSchema(map[string]any{
			"task_id": defaultStringProperty(),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID string `json:"task_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.AdvanceWorkflowPhase(ctx, args.TaskID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterSetTechnicalDocumentation(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "set_technical_documentation",
		Description: "Record the path of the technical documentation produced during the Planning " +
			"phase. The development workflow must be started first.",
		InputSchema: createSchema(map[string]any{
			"task_id": defaultStringProperty(),
			"path":    stringProperty("Repository-relative path of the documentation"),
		}, []string{"task_id", "path"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID string `json:"task_id"`
		Path   string `json:"path"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.SetTechnicalDocumentation(ctx, args.TaskID, args.Path)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterSetTestCoverage(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "set_test_coverage",
		Description: "Record the measured test coverage for a task as a fraction between 0 and 1. " +
			"The development workflow must be started first.",
		InputSchema: createSchema(map[string]any{
			"task_id":  defaultStringProperty(),
			"coverage": numberProperty("Measured coverage in [0, 1], e.g. 0.85 for 85%"),
		}, []string{"task_id", "coverage"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID   string  `json:"task_id"`
		Coverage float64 `json:"coverage"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.SetTestCoverage(ctx, args.TaskID, args.Coverage)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterAddAIReviewReport(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "add_ai_review_report",
		Description: "Record an AI review report for a task in the AIReview phase. Review types: " +
			"code_quality, security, performance, architecture, testing, documentation. The task " +
			"needs the configured number of reviews (default 3) before the workflow can complete.",
		InputSchema: createSchema(map[string]any{
			"task_id":     defaultStringProperty(),
			"model_name":  stringProperty("Name of the reviewing AI model"),
			"review_type": stringProperty("One of: code_quality, security, performance, architecture, testing, documentation"),
			"content":     stringProperty("The review report text"),
			"score":       numberProperty("Optional quality score in [0, 1]"),
			"approved":    boolProperty("Whether the model approves the implementation"),
			"suggestions": arrayProperty("Improvement suggestions", "string"),
		}, []string{"task_id", "model_name", "review_type"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID      string   `json:"task_id"`
		ModelName   string   `json:"model_name"`
		ReviewType  string   `json:"review_type"`
		Content     string   `json:"content"`
		Score       *float64 `json:"score"`
		Approved    bool     `json:"approved"`
		Suggestions []string `json:"suggestions"`
	}) (*mcp.CallToolResult, any, error) {
		reviewReq := &models.AddReviewRequest{
			ModelName:   args.ModelName,
			ReviewType:  args.ReviewType,
			Content:     args.Content,
			Score:       args.Score,
			Approved:    args.Approved,
			Suggestions: args.Suggestions,
		}
		result, err := t.TaskToolset.AddAIReviewReport(ctx, args.TaskID, reviewReq)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetPhaseProgress(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "get_phase_progress",
		Description: "Get a task's progress through the development workflow as a fraction in [0, 1], " +
			"together with its workflow status and AI review counts.",
		InputSchema: createSchema(map[string]any{
			"task_id": defaultStringProperty(),
		}, []string{"task_id"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		TaskID string `json:"task_id"`
	}) (*mcp.CallToolResult, any, error) {
		result, err := t.TaskToolset.GetPhaseProgress(ctx, args.TaskID)
		return handleToolResult(result, err)
	})
}

func (t *Toolsets) RegisterGetWorkflowInstructions(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: "get_workflow_instructions",
		Description: "Get the workflow instructions for a development phase. The instructions name " +
			"the tools to use and the requirements to satisfy before advancing.",
		InputSchema: createSchema(map[string]any{
			"phase": stringProperty("Phase label, e.g. planning, implementation, test_creation, testing, ai_review"),
		}, []string{"phase"}),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct {
		Phase string `json:"phase"`
	}) (*mcp.CallToolResult, any, error) {
		return handleToolResult(map[string]string{
			"phase":        args.Phase,
			"instructions": PhaseInstructions(args.Phase),
		}, nil)
	})
}
