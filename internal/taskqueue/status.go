// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import (
	"fmt"
	"strings"
)

// TaskStatus is the phase ladder a task moves through. Development phases
// (Planning through Finalized) are enforced by the transition table below;
// execution statuses (Pending, Running, ...) exist for queue bookkeeping.
type TaskStatus string

const (
	StatusPending          TaskStatus = "pending"
	StatusRunning          TaskStatus = "running"
	StatusCompleted        TaskStatus = "completed"
	StatusFailed           TaskStatus = "failed"
	StatusCancelled        TaskStatus = "cancelled"
	StatusPlanning         TaskStatus = "planning"
	StatusInImplementation TaskStatus = "implementation"
	StatusTestCreation     TaskStatus = "test_creation"
	StatusTesting          TaskStatus = "testing"
	StatusAIReview         TaskStatus = "ai_review"
	StatusFinalized        TaskStatus = "finalized"
)

// ParseTaskStatus normalizes a status label. "in_implementation" is accepted
// as an alias kept for older clients.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled,
		StatusPlanning, StatusInImplementation, StatusTestCreation, StatusTesting,
		StatusAIReview, StatusFinalized:
		return TaskStatus(s), nil
	}
	if s == "in_implementation" {
		return StatusInImplementation, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsLifecyclePhase reports whether s is one of the development phases that
// get recorded in the task's phase history.
func (s TaskStatus) IsLifecyclePhase() bool {
	switch s {
	case StatusPlanning, StatusInImplementation, StatusTestCreation, StatusTesting, StatusAIReview:
		return true
	}
	return false
}

// TaskPriority orders tasks within the queue.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityNormal   TaskPriority = "normal"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Rank returns the numeric weight of the priority, higher is more urgent.
// Unknown values rank as normal.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 2
	}
}

// ParseTaskPriority validates a priority label.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return TaskPriority(s), nil
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

// TaskType classifies how a task relates to the rest of the queue.
type TaskType string

const (
	TypeSimple    TaskType = "simple"
	TypeDependent TaskType = "dependent"
	TypeWorkflow  TaskType = "workflow"
	TypeScheduled TaskType = "scheduled"
)

// ParseTaskType validates a task type label.
func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(s) {
	case TypeSimple, TypeDependent, TypeWorkflow, TypeScheduled:
		return TaskType(s), nil
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "OnHold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

// ParseProjectStatus validates a project status label, case-insensitively.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	for _, status := range []ProjectStatus{
		ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled,
	} {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// WorkflowStatus is the status of a multi-task workflow.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
	WorkflowCancelled WorkflowStatus = "cancelled"
	WorkflowPaused    WorkflowStatus = "paused"
)

// ParseWorkflowStatus validates a workflow status label.
func ParseWorkflowStatus(s string) (WorkflowStatus, error) {
	switch WorkflowStatus(s) {
	case WorkflowPending, WorkflowRunning, WorkflowCompleted, WorkflowFailed,
		WorkflowCancelled, WorkflowPaused:
		return WorkflowStatus(s), nil
	}
	return "", fmt.Errorf("unknown workflow status %q", s)
}

// DevWorkflowStatus is the per-task development workflow ladder. It advances
// strictly one step at a time through AdvanceWorkflowPhase.
type DevWorkflowStatus string

const (
	DevNotStarted       DevWorkflowStatus = "not_started"
	DevPlanning         DevWorkflowStatus = "planning"
	DevInImplementation DevWorkflowStatus = "in_implementation"
	DevTestCreation     DevWorkflowStatus = "test_creation"
	DevTesting          DevWorkflowStatus = "testing"
	DevAIReview         DevWorkflowStatus = "ai_review"
	DevCompleted        DevWorkflowStatus = "completed"
	DevFailed           DevWorkflowStatus = "failed"
)

// TaskStatus maps a development workflow status onto the task status ladder.
// NotStarted has no phase equivalent and returns false.
func (d DevWorkflowStatus) TaskStatus() (TaskStatus, bool) {
	switch d {
	case DevPlanning:
		return StatusPlanning, true
	case DevInImplementation:
		return StatusInImplementation, true
	case DevTestCreation:
		return StatusTestCreation, true
	case DevTesting:
		return StatusTesting, true
	case DevAIReview:
		return StatusAIReview, true
	case DevCompleted:
		return StatusCompleted, true
	case DevFailed:
		return StatusFailed, true
	}
	return "", false
}

// AIReviewType classifies an AI development review.
type AIReviewType string

const (
	ReviewCodeQuality   AIReviewType = "code_quality"
	ReviewSecurity      AIReviewType = "security"
	ReviewPerformance   AIReviewType = "performance"
	ReviewArchitecture  AIReviewType = "architecture"
	ReviewTesting       AIReviewType = "testing"
	ReviewDocumentation AIReviewType = "documentation"
)

// ParseAIReviewType validates a review type label.
func ParseAIReviewType(s string) (AIReviewType, error) {
	switch AIReviewType(s) {
	case ReviewCodeQuality, ReviewSecurity, ReviewPerformance, ReviewArchitecture,
		ReviewTesting, ReviewDocumentation:
		return AIReviewType(s), nil
	}
	return "", fmt.Errorf("unknown AI review type %q", s)
}
