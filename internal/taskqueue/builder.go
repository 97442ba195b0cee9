// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import (
	"github.com/google/uuid"
)

// TaskBuilder assembles a task step by step. Mostly used by tests and by
// the workflow submission path.
type TaskBuilder struct {
	task *Task
}

// NewTaskBuilder starts a builder for a task with the given name.
func NewTaskBuilder(name string) *TaskBuilder {
	return &TaskBuilder{task: NewTask(name, "")}
}

// Command sets the command the task records.
func (b *TaskBuilder) Command(command string) *TaskBuilder {
	b.task.Command = command
	return b
}

// Description sets the task description.
func (b *TaskBuilder) Description(description string) *TaskBuilder {
	b.task.Description = description
	return b
}

// Priority sets the task priority.
func (b *TaskBuilder) Priority(p TaskPriority) *TaskBuilder {
	b.task.Priority = p
	return b
}

// Project sets the owning project id.
func (b *TaskBuilder) Project(id uuid.UUID) *TaskBuilder {
	b.task.ProjectID = id
	return b
}

// DependsOn adds a required dependency on another task.
func (b *TaskBuilder) DependsOn(taskID uuid.UUID, condition DependencyCondition) *TaskBuilder {
	b.task.AddDependency(Dependency{TaskID: taskID, Condition: condition, Required: true})
	return b
}

// Timeout sets the execution timeout.
func (b *TaskBuilder) Timeout(d Duration) *TaskBuilder {
	b.task.Timeout = &d
	return b
}

// Retry sets the retry policy.
func (b *TaskBuilder) Retry(attempts int, delay Duration) *TaskBuilder {
	b.task.MaxRetries = attempts
	b.task.RetryDelay = delay
	return b
}

// Env sets one environment variable on the task record.
func (b *TaskBuilder) Env(key, value string) *TaskBuilder {
	if b.task.Environment == nil {
		b.task.Environment = make(map[string]string)
	}
	b.task.Environment[key] = value
	return b
}

// Metadata sets one metadata entry.
func (b *TaskBuilder) Metadata(key string, value any) *TaskBuilder {
	if b.task.Metadata == nil {
		b.task.Metadata = make(map[string]any)
	}
	b.task.Metadata[key] = value
	return b
}

// AIReviewsRequired overrides the review quota.
func (b *TaskBuilder) AIReviewsRequired(n int) *TaskBuilder {
	b.task.AIReviewsRequired = n
	return b
}

// Build returns the assembled task.
func (b *TaskBuilder) Build() *Task {
	return b.task
}
