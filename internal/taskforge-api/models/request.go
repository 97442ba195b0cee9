// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package models defines the request and response shapes of the HTTP API.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/taskqueue"
)

var validate = validator.New()

// SubmitTaskRequest is the body of POST /tasks and POST /tasks/upsert.
type SubmitTaskRequest struct {
	Name               string                 `json:"name" validate:"required"`
	Command            string                 `json:"command" validate:"required"`
	Description        string                 `json:"description,omitempty"`
	TaskType           string                 `json:"task_type,omitempty" validate:"omitempty,oneof=simple dependent workflow scheduled"`
	TechnicalSpecs     string                 `json:"technical_specs,omitempty"`
	AcceptanceCriteria []string               `json:"acceptance_criteria,omitempty"`
	Priority           string                 `json:"priority,omitempty" validate:"omitempty,oneof=low normal high critical"`
	ProjectID          uuid.UUID              `json:"project_id" validate:"required"`
	WorkingDirectory   string                 `json:"working_directory,omitempty"`
	Timeout            *taskqueue.Duration    `json:"timeout,omitempty"`
	MaxRetries         int                    `json:"max_retries,omitempty" validate:"gte=0"`
	RetryDelay         *taskqueue.Duration    `json:"retry_delay,omitempty"`
	EstimatedHours     *int                   `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	Tags               []string               `json:"tags,omitempty"`
	Environment        map[string]string      `json:"environment,omitempty"`
	Metadata           map[string]any         `json:"metadata,omitempty"`
	AIReviewsRequired  int                    `json:"ai_reviews_required,omitempty" validate:"gte=0"`
	Dependencies       []AddDependencyRequest `json:"dependencies,omitempty" validate:"dive"`
}

// Validate validates the request.
func (r *SubmitTaskRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// ToTask builds the domain task.
func (r *SubmitTaskRequest) ToTask() *taskqueue.Task {
	task := taskqueue.NewTask(r.Name, r.Command)
	if r.Description != "" {
		task.Description = r.Description
	}
	if r.TaskType != "" {
		task.TaskType = taskqueue.TaskType(r.TaskType)
	}
	task.TechnicalSpecs = r.TechnicalSpecs
	task.AcceptanceCriteria = r.AcceptanceCriteria
	if r.Priority != "" {
		task.Priority = taskqueue.TaskPriority(r.Priority)
	}
	task.ProjectID = r.ProjectID
	task.WorkingDirectory = r.WorkingDirectory
	task.Timeout = r.Timeout
	if r.MaxRetries > 0 {
		task.MaxRetries = r.MaxRetries
	}
	if r.RetryDelay != nil {
		task.RetryDelay = *r.RetryDelay
	}
	task.EstimatedHours = r.EstimatedHours
	task.Tags = r.Tags
	task.Environment = r.Environment
	task.Metadata = r.Metadata
	if r.AIReviewsRequired > 0 {
		task.AIReviewsRequired = r.AIReviewsRequired
	}
	for _, dep := range r.Dependencies {
		task.AddDependency(dep.ToDependency())
	}
	return task
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Name               *string        `json:"name,omitempty"`
	Command            *string        `json:"command,omitempty"`
	Description        *string        `json:"description,omitempty"`
	TechnicalSpecs     *string        `json:"technical_specs,omitempty"`
	AcceptanceCriteria *[]string      `json:"acceptance_criteria,omitempty"`
	Priority           *string        `json:"priority,omitempty" validate:"omitempty,oneof=low normal high critical"`
	ProjectID          *uuid.UUID     `json:"project_id,omitempty"`
	Status             *string        `json:"status,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// Validate validates the request.
func (r *UpdateTaskRequest) Validate() error {
	if err := formatValidationError(validate.Struct(r)); err != nil {
		return err
	}
	if r.Status != nil {
		if _, err := taskqueue.ParseTaskStatus(*r.Status); err != nil {
			return err
		}
	}
	return nil
}

// SetStatusRequest is the body of PUT /tasks/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate validates the request.
func (r *SetStatusRequest) Validate() error {
	if err := formatValidationError(validate.Struct(r)); err != nil {
		return err
	}
	_, err := taskqueue.ParseTaskStatus(r.Status)
	return err
}

// RetryTaskRequest is the body of POST /tasks/{id}/retry.
type RetryTaskRequest struct {
	ResetRetryCount bool `json:"reset_retry_count,omitempty"`
}

// CancelTaskRequest is the body of POST /tasks/{id}/cancel.
type CancelTaskRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SetPriorityRequest is the body of PUT /tasks/{id}/priority.
type SetPriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=low normal high critical"`
}

// Validate validates the request.
func (r *SetPriorityRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// AddDependencyRequest is the body of POST /tasks/{id}/dependencies.
type AddDependencyRequest struct {
	TaskID        uuid.UUID                      `json:"task_id" validate:"required"`
	Condition     *taskqueue.DependencyCondition `json:"condition,omitempty"`
	Required      *bool                          `json:"required,omitempty"`
	CorrelationID string                         `json:"correlation_id,omitempty"`
	Metadata      map[string]any                 `json:"metadata,omitempty"`
}

// Validate validates the request.
func (r *AddDependencyRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// ToDependency builds the domain dependency. Required defaults to true.
func (r *AddDependencyRequest) ToDependency() taskqueue.Dependency {
	dep := taskqueue.Dependency{
		TaskID:        r.TaskID,
		Required:      r.Required == nil || *r.Required,
		CorrelationID: r.CorrelationID,
		Metadata:      r.Metadata,
	}
	if r.Condition != nil {
		dep.Condition = *r.Condition
	} else {
		dep.Condition = taskqueue.ConditionSuccess
	}
	return dep
}

// SetDocumentationRequest is the body of PUT /tasks/{id}/workflow/documentation.
type SetDocumentationRequest struct {
	Path string `json:"path" validate:"required"`
}

// Validate validates the request.
func (r *SetDocumentationRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// SetCoverageRequest is the body of PUT /tasks/{id}/workflow/coverage.
// Coverage is a fraction in [0, 1].
type SetCoverageRequest struct {
	Coverage *float64 `json:"coverage" validate:"required"`
}

// Validate validates the request.
func (r *SetCoverageRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// AddReviewRequest is the body of POST /tasks/{id}/workflow/reviews.
type AddReviewRequest struct {
	ModelName   string   `json:"model_name" validate:"required"`
	ReviewType  string   `json:"review_type" validate:"required"`
	Content     string   `json:"content,omitempty"`
	Score       *float64 `json:"score,omitempty" validate:"omitempty,gte=0,lte=1"`
	Approved    bool     `json:"approved"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Validate validates the request.
func (r *AddReviewRequest) Validate() error {
	if err := formatValidationError(validate.Struct(r)); err != nil {
		return err
	}
	_, err := taskqueue.ParseAIReviewType(r.ReviewType)
	return err
}

// ToReview builds the domain review.
func (r *AddReviewRequest) ToReview() taskqueue.AIDevelopmentReview {
	return taskqueue.AIDevelopmentReview{
		ModelName:   r.ModelName,
		ReviewType:  taskqueue.AIReviewType(r.ReviewType),
		Content:     r.Content,
		Score:       r.Score,
		Approved:    r.Approved,
		Suggestions: r.Suggestions,
	}
}

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name             string         `json:"name" validate:"required"`
	Description      string         `json:"description,omitempty"`
	GitRepositoryURL string         `json:"git_repository_url,omitempty"`
	DirectoryPath    string         `json:"directory_path,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	DueDate          *time.Time     `json:"due_date,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Validate validates the request.
func (r *CreateProjectRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// ToProject builds the domain project.
func (r *CreateProjectRequest) ToProject() *taskqueue.Project {
	project := taskqueue.NewProject(r.Name)
	project.Description = r.Description
	project.GitRepositoryURL = r.GitRepositoryURL
	project.DirectoryPath = r.DirectoryPath
	if len(r.Tags) > 0 {
		project.Tags = r.Tags
	}
	project.DueDate = r.DueDate
	project.Metadata = r.Metadata
	return project
}

// UpdateProjectRequest is the body of PUT /projects/{id}. Nil fields are
// left unchanged.
type UpdateProjectRequest struct {
	Name             *string        `json:"name,omitempty"`
	Description      *string        `json:"description,omitempty"`
	Status           *string        `json:"status,omitempty"`
	GitRepositoryURL *string        `json:"git_repository_url,omitempty"`
	DirectoryPath    *string        `json:"directory_path,omitempty"`
	Tags             *[]string      `json:"tags,omitempty"`
	DueDate          *time.Time     `json:"due_date,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Validate validates the request.
func (r *UpdateProjectRequest) Validate() error {
	if r.Status != nil {
		if _, err := taskqueue.ParseProjectStatus(*r.Status); err != nil {
			return err
		}
	}
	return nil
}

// WorkflowTaskRequest is one task inside a workflow submission.
type WorkflowTaskRequest struct {
	Name        string     `json:"name" validate:"required"`
	Command     string     `json:"command" validate:"required"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low normal high critical"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
}

// WorkflowDependencyRequest is one edge inside a workflow submission. Tasks
// are referenced by name since their ids are assigned on submit.
type WorkflowDependencyRequest struct {
	FromTask  string                         `json:"from_task" validate:"required"`
	ToTask    string                         `json:"to_task" validate:"required"`
	Condition *taskqueue.DependencyCondition `json:"condition,omitempty"`
}

// SubmitWorkflowRequest is the body of POST /workflows.
type SubmitWorkflowRequest struct {
	Name         string                      `json:"name" validate:"required"`
	Description  string                      `json:"description,omitempty"`
	Tasks        []WorkflowTaskRequest       `json:"tasks" validate:"required,min=1,dive"`
	Dependencies []WorkflowDependencyRequest `json:"dependencies,omitempty" validate:"dive"`
}

// Validate validates the request.
func (r *SubmitWorkflowRequest) Validate() error {
	return formatValidationError(validate.Struct(r))
}

// ToWorkflow builds the domain workflow, resolving dependency edges from
// task names to the freshly assigned task ids.
func (r *SubmitWorkflowRequest) ToWorkflow() (*taskqueue.Workflow, error) {
	wf := taskqueue.NewWorkflow(r.Name)
	wf.Description = r.Description

	byName := make(map[string]uuid.UUID, len(r.Tasks))
	for _, tr := range r.Tasks {
		task := taskqueue.NewTask(tr.Name, tr.Command)
		if tr.Description != "" {
			task.Description = tr.Description
		}
		if tr.Priority != "" {
			task.Priority = taskqueue.TaskPriority(tr.Priority)
		}
		if tr.ProjectID != nil {
			task.ProjectID = *tr.ProjectID
		}
		if _, dup := byName[tr.Name]; dup {
			return nil, fmt.Errorf("duplicate task name %q in workflow", tr.Name)
		}
		byName[tr.Name] = task.ID
		wf.AddTask(task)
	}

	for _, dep := range r.Dependencies {
		from, ok := byName[dep.FromTask]
		if !ok {
			return nil, fmt.Errorf("dependency references unknown task %q", dep.FromTask)
		}
		to, ok := byName[dep.ToTask]
		if !ok {
			return nil, fmt.Errorf("dependency references unknown task %q", dep.ToTask)
		}
		condition := taskqueue.ConditionSuccess
		if dep.Condition != nil {
			condition = *dep.Condition
		}
		wf.AddDependency(from, to, condition)
	}
	return wf, nil
}

// UpdateWorkflowStatusRequest is the body of PUT /workflows/{id}/status.
type UpdateWorkflowStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate validates the request.
func (r *UpdateWorkflowStatusRequest) Validate() error {
	if err := formatValidationError(validate.Struct(r)); err != nil {
		return err
	}
	_, err := taskqueue.ParseWorkflowStatus(r.Status)
	return err
}

// formatValidationError flattens validator errors into a readable message.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%s is required", fe.Field())
		case "min":
			return fmt.Errorf("%s needs at least %s entries", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
		default:
			return fmt.Errorf("%s is invalid (%s)", fe.Field(), fe.Tag())
		}
	}
	return err
}
