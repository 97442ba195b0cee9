// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// taskToolRegistrations returns the list of task toolset registration functions
func (t *Toolsets) taskToolRegistrations() []RegisterFunc {
	return []RegisterFunc{
		t.RegisterSubmitTask,
		t.RegisterUpsertTask,
		t.RegisterGetTask,
		t.RegisterListTasks,
		t.RegisterUpdateTask,
		t.RegisterRetryTask,
		t.RegisterCancelTask,
		t.RegisterDeleteTask,
		t.RegisterAddDependency,
		t.RegisterAdvanceWorkflowPhase,
		t.RegisterSetTechnicalDocumentation,
		t.RegisterSetTestCoverage,
		t.RegisterAddAIReviewReport,
		t.RegisterGetPhaseProgress,
		t.RegisterGetWorkflowInstructions,
	}
}

// projectToolRegistrations returns the list of project toolset registration functions
func (t *Toolsets) projectToolRegistrations() []RegisterFunc {
	return []RegisterFunc{
		t.RegisterCreateProject,
		t.RegisterGetProject,
		t.RegisterGetProjectTasks,
		t.RegisterListProjects,
		t.RegisterUpdateProject,
		t.RegisterDeleteProject,
	}
}

// workflowToolRegistrations returns the list of workflow toolset registration functions
func (t *Toolsets) workflowToolRegistrations() []RegisterFunc {
	return []RegisterFunc{
		t.RegisterSubmitWorkflow,
		t.RegisterGetWorkflowStatus,
		t.RegisterGetQueueStats,
	}
}

// Register registers every tool whose toolset handler is configured.
func (t *Toolsets) Register(s *mcp.Server) {
	if t.TaskToolset != nil {
		for _, registerFunc := range t.taskToolRegistrations() {
			registerFunc(s)
		}
	}
	if t.ProjectToolset != nil {
		for _, registerFunc := range t.projectToolRegistrations() {
			registerFunc(s)
		}
	}
	if t.WorkflowToolset != nil {
		for _, registerFunc := range t.workflowToolRegistrations() {
			registerFunc(s)
		}
	}
}
