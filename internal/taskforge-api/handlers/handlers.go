// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package handlers wires the HTTP surface of the queue.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/taskforge/taskforge/internal/server/middleware/cors"
	"github.com/taskforge/taskforge/internal/server/middleware/logger"
	"github.com/taskforge/taskforge/internal/taskforge-api/events"
	"github.com/taskforge/taskforge/internal/taskforge-api/mcphandlers"
	"github.com/taskforge/taskforge/internal/taskforge-api/metrics"
	"github.com/taskforge/taskforge/internal/taskforge-api/services"
	"github.com/taskforge/taskforge/pkg/mcp"
	"github.com/taskforge/taskforge/pkg/mcp/tools"
	"github.com/taskforge/taskforge/pkg/middleware"
)

// Handler holds the services and provides HTTP handlers
type Handler struct {
	services *services.Services
	hub      *events.Hub
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a new Handler instance. The hub and metrics may be nil when
// the corresponding feature is disabled.
func New(services *services.Services, hub *events.Hub, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		services: services,
		hub:      hub,
		metrics:  m,
		logger:   logger,
	}
}

// Routes sets up all HTTP routes and returns the configured handler
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Global middlewares - applies to all routes
	loggerMiddleware := logger.Middleware(h.logger)
	corsMiddleware := cors.Middleware()

	routes := middleware.NewRouteBuilder(mux).With(loggerMiddleware, corsMiddleware)

	// Health check
	routes.HandleFunc("GET /health", h.Health)

	// Task operations
	routes.HandleFunc("POST /tasks", h.SubmitTask)
	routes.HandleFunc("GET /tasks", h.ListTasks)
	routes.HandleFunc("POST /tasks/upsert", h.UpsertTask)
	routes.HandleFunc("GET /tasks/{id}", h.GetTask)
	routes.HandleFunc("PUT /tasks/{id}", h.UpdateTask)
	routes.HandleFunc("DELETE /tasks/{id}", h.DeleteTask)
	routes.HandleFunc("POST /tasks/{id}/retry", h.RetryTask)
	routes.HandleFunc("POST /tasks/{id}/cancel", h.CancelTask)
	routes.HandleFunc("GET /tasks/{id}/status", h.GetTaskStatus)
	routes.HandleFunc("PUT /tasks/{id}/status", h.SetTaskStatus)
	routes.HandleFunc("GET /tasks/{id}/result", h.GetTaskResult)
	routes.HandleFunc("PUT /tasks/{id}/priority", h.SetTaskPriority)
	routes.HandleFunc("POST /tasks/{id}/advance-phase", h.AdvanceTaskPhase)
	routes.HandleFunc("GET /tasks/{id}/dependencies", h.GetTaskDependencies)
	routes.HandleFunc("POST /tasks/{id}/dependencies", h.AddTaskDependency)
	routes.HandleFunc("GET /tasks/{id}/correlations", h.GetTaskCorrelations)

	// Per-task development workflow
	routes.HandleFunc("POST /tasks/{id}/workflow/advance", h.AdvanceTaskWorkflow)
	routes.HandleFunc("PUT /tasks/{id}/workflow/documentation", h.SetTaskDocumentation)
	routes.HandleFunc("PUT /tasks/{id}/workflow/coverage", h.SetTaskCoverage)
	routes.HandleFunc("POST /tasks/{id}/workflow/reviews", h.AddTaskReview)
	routes.HandleFunc("GET /tasks/{id}/workflow", h.GetTaskWorkflow)

	// Project management
	routes.HandleFunc("POST /projects", h.CreateProject)
	routes.HandleFunc("GET /projects", h.ListProjects)
	routes.HandleFunc("GET /projects/{id}", h.GetProject)
	routes.HandleFunc("PUT /projects/{id}", h.UpdateProject)
	routes.HandleFunc("DELETE /projects/{id}", h.DeleteProject)
	routes.HandleFunc("GET /projects/{id}/tasks", h.ListProjectTasks)

	// Multi-task workflows
	routes.HandleFunc("POST /workflows", h.SubmitWorkflow)
	routes.HandleFunc("GET /workflows", h.ListWorkflows)
	routes.HandleFunc("GET /workflows/{id}", h.GetWorkflow)
	routes.HandleFunc("GET /workflows/{id}/status", h.GetWorkflowStatus)
	routes.HandleFunc("POST /workflows/{id}/cancel", h.CancelWorkflow)
	routes.HandleFunc("POST /workflows/{id}/approve", h.ApproveWorkflow)
	routes.HandleFunc("PUT /workflows/{id}/status", h.UpdateWorkflowStatus)

	// Queue statistics
	routes.HandleFunc("GET /stats", h.Stats)

	// MCP endpoints: streamable transport plus the legacy SSE pair
	toolsets := h.mcpToolsets()
	routes.Handle("/mcp", mcp.NewHTTPServer(toolsets))
	sseHandler := mcp.NewSSEHandler(toolsets)
	routes.Handle("GET /mcp/sse", sseHandler)
	routes.Handle("POST /mcp/message", sseHandler)

	// Websocket event stream. Mounted on the bare mux: the access-log
	// wrapper hides http.Hijacker from the upgrader.
	if h.hub != nil {
		mux.Handle("GET /ws", h.hub)
	}

	// Prometheus metrics, unless served on a dedicated listener
	if h.metrics != nil {
		routes.Handle("GET /metrics", h.metrics.Handler())
	}

	return mux
}

func (h *Handler) mcpToolsets() *tools.Toolsets {
	mcpHandler := mcphandlers.NewMCPHandler(h.services)
	return &tools.Toolsets{
		TaskToolset:     mcpHandler,
		ProjectToolset:  mcpHandler,
		WorkflowToolset: mcpHandler,
	}
}
