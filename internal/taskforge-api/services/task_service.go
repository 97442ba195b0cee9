// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/taskforge-api/events"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

// TaskService manages the task records and their development lifecycle.
type TaskService struct {
	state  *queueState
	logger *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(state *queueState, logger *slog.Logger) *TaskService {
	return &TaskService{state: state, logger: logger}
}

// TaskFilter narrows List results. Zero values match everything.
type TaskFilter struct {
	ProjectID uuid.UUID
	Status    string
}

// TaskUpdate is a partial update. Nil fields are left unchanged. Status
// changes go through the transition table.
type TaskUpdate struct {
	Name               *string
	Command            *string
	Description        *string
	TechnicalSpecs     *string
	AcceptanceCriteria *[]string
	Priority           *taskqueue.TaskPriority
	ProjectID          *uuid.UUID
	Status             *taskqueue.TaskStatus
	Metadata           map[string]any
}

// Submit validates and registers a new task. The project ledger and the
// vectorizer index are updated best effort.
func (s *TaskService) Submit(ctx context.Context, task *taskqueue.Task) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.submitLocked(task)
}

// submitLocked does the submit work. The caller holds the state lock.
func (s *TaskService) submitLocked(task *taskqueue.Task) (*taskqueue.Task, error) {
	task.Normalize()

	project, err := s.validateTask(task)
	if err != nil {
		return nil, err
	}

	if err := s.state.saveTask(task); err != nil {
		return nil, err
	}
	s.state.tasks[task.ID] = task

	s.state.tracker.TaskSubmitted(project, task)
	if s.state.metrics != nil {
		s.state.metrics.TasksSubmitted.Inc()
		s.state.metrics.TasksActive.Inc()
	}
	s.state.publish(events.Event{
		Type:   events.TypeTaskSubmitted,
		TaskID: task.ID.String(),
		Status: string(task.EffectiveStatus()),
	})
	s.indexTask(task)

	s.logger.Info("task submitted", "task_id", task.ID, "name", task.Name, "priority", task.Priority)
	return cloneTask(task), nil
}

// validateTask checks the submit invariants and resolves the task's project.
// The caller holds the state lock.
func (s *TaskService) validateTask(task *taskqueue.Task) (*taskqueue.Project, error) {
	if task.Name == "" {
		return nil, fmt.Errorf("%w: task name is required", ErrInvalidTask)
	}
	if task.Command == "" {
		return nil, fmt.Errorf("%w: task command is required", ErrInvalidTask)
	}
	if task.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidTask)
	}
	project, ok := s.state.projects[task.ProjectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %s does not exist", ErrInvalidTask, task.ProjectID)
	}
	return project, nil
}

// indexTask posts the task to the vectorizer without blocking the caller.
func (s *TaskService) indexTask(task *taskqueue.Task) {
	if s.state.vec == nil {
		return
	}
	snapshot := cloneTask(task)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.state.vec.IndexTask(ctx, snapshot); err != nil {
			s.logger.Warn("failed to index task context", "task_id", snapshot.ID, "error", err)
		}
	}()
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*taskqueue.Task, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// List returns tasks matching the filter, newest first.
func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]*taskqueue.Task, error) {
	var wantStatus taskqueue.TaskStatus
	if filter.Status != "" {
		parsed, err := taskqueue.ParseTaskStatus(filter.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		wantStatus = parsed
	}

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	var out []*taskqueue.Task
	for _, task := range s.state.tasks {
		if filter.ProjectID != uuid.Nil && task.ProjectID != filter.ProjectID {
			continue
		}
		if wantStatus != "" && task.EffectiveStatus() != wantStatus {
			continue
		}
		out = append(out, cloneTask(task))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update applies a partial update. A status change is validated against the
// transition table and recorded in the phase history.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, update TaskUpdate) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)

	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("%w: task name cannot be empty", ErrInvalidTask)
		}
		updated.Name = *update.Name
	}
	if update.Command != nil {
		if *update.Command == "" {
			return nil, fmt.Errorf("%w: task command cannot be empty", ErrInvalidTask)
		}
		updated.Command = *update.Command
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.TechnicalSpecs != nil {
		updated.TechnicalSpecs = *update.TechnicalSpecs
	}
	if update.AcceptanceCriteria != nil {
		updated.AcceptanceCriteria = *update.AcceptanceCriteria
	}
	if update.Priority != nil {
		updated.Priority = *update.Priority
	}
	if update.ProjectID != nil {
		if _, ok := s.state.projects[*update.ProjectID]; !ok {
			return nil, fmt.Errorf("%w: project %s does not exist", ErrInvalidTask, *update.ProjectID)
		}
		updated.ProjectID = *update.ProjectID
	}
	if update.Metadata != nil {
		updated.Metadata = update.Metadata
	}
	var statusBefore, statusAfter taskqueue.TaskStatus
	if update.Status != nil {
		var err error
		statusBefore, statusAfter, err = applyStatus(updated, *update.Status)
		if err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	if update.Status != nil {
		s.observeStatusChange(updated, statusBefore, statusAfter)
	}
	s.logger.Info("task updated", "task_id", updated.ID)
	return cloneTask(updated), nil
}

// Upsert updates the task with the given name or submits it as new.
func (s *TaskService) Upsert(ctx context.Context, task *taskqueue.Task) (*taskqueue.Task, bool, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	existing := s.findByName(task.Name)
	if existing == nil {
		created, err := s.submitLocked(task)
		return created, true, err
	}

	if _, err := s.validateTask(task); err != nil {
		return nil, false, err
	}

	updated := cloneTask(existing)
	updated.Command = task.Command
	if task.Description != "" && task.Description != taskqueue.DefaultDescription {
		updated.Description = task.Description
	}
	updated.Priority = task.Priority
	updated.ProjectID = task.ProjectID
	if task.TechnicalSpecs != "" {
		updated.TechnicalSpecs = task.TechnicalSpecs
	}
	if len(task.AcceptanceCriteria) > 0 {
		updated.AcceptanceCriteria = task.AcceptanceCriteria
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.commitTask(updated); err != nil {
		return nil, false, err
	}
	s.logger.Info("task upserted", "task_id", updated.ID, "name", updated.Name)
	return cloneTask(updated), false, nil
}

// findByName returns the task with the given name. The caller holds the lock.
func (s *TaskService) findByName(name string) *taskqueue.Task {
	for _, task := range s.state.tasks {
		if task.Name == name {
			return task
		}
	}
	return nil
}

// SetStatus moves a task to a new status through the transition table.
func (s *TaskService) SetStatus(ctx context.Context, id uuid.UUID, status taskqueue.TaskStatus) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	before, after, err := applyStatus(updated, status)
	if err != nil {
		return nil, err
	}
	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	s.observeStatusChange(updated, before, after)
	return cloneTask(updated), nil
}

// commitTask persists an updated copy and swaps it into the in-memory map.
// When the save fails the map still holds the previous record, so callers
// never observe a half-applied mutation.
func (s *TaskService) commitTask(updated *taskqueue.Task) error {
	if err := s.state.saveTask(updated); err != nil {
		return err
	}
	s.state.tasks[updated.ID] = updated
	return nil
}

// applyStatus runs the transition on the updated copy and returns the
// effective statuses around it so the caller can observe the change after a
// successful commit.
func applyStatus(task *taskqueue.Task, status taskqueue.TaskStatus) (before, after taskqueue.TaskStatus, err error) {
	before = task.EffectiveStatus()
	if err := task.SetStatus(status); err != nil {
		return "", "", err
	}
	return before, task.EffectiveStatus(), nil
}

// observeStatusChange updates the counters and notifies subscribers after a
// status change. A no-op when the effective status did not move.
func (s *TaskService) observeStatusChange(task *taskqueue.Task, before, after taskqueue.TaskStatus) {
	if before == after {
		return
	}
	if s.state.metrics != nil {
		m := s.state.metrics
		if !before.IsTerminal() && after.IsTerminal() {
			m.TasksActive.Dec()
		}
		switch after {
		case taskqueue.StatusCompleted:
			m.TasksCompleted.Inc()
			m.TaskDuration.Observe(time.Since(task.Metrics.SubmittedAt).Seconds())
		case taskqueue.StatusFailed:
			m.TasksFailed.Inc()
		case taskqueue.StatusCancelled:
			m.TasksCancelled.Inc()
		}
	}
	s.state.publish(events.Event{
		Type:   events.TypeTaskStatusChanged,
		TaskID: task.ID.String(),
		Status: string(after),
	})
	s.logger.Info("task status changed", "task_id", task.ID, "from", before, "to", after)
}

// Retry puts a failed task back in the queue. The retry counter is bumped
// unless the caller asks for a reset.
func (s *TaskService) Retry(ctx context.Context, id uuid.UUID, resetRetryCount bool) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	before, after, err := applyStatus(updated, taskqueue.StatusPending)
	if err != nil {
		return nil, err
	}
	updated.Result = nil
	updated.Metrics.CompletedAt = nil
	if resetRetryCount {
		updated.Metrics.RetryCount = 0
	} else {
		updated.Metrics.RetryCount++
	}

	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	s.observeStatusChange(updated, before, after)
	if s.state.metrics != nil {
		s.state.metrics.TasksRetried.Inc()
		s.state.metrics.TasksActive.Inc()
	}
	s.state.publish(events.Event{
		Type:   events.TypeTaskRetried,
		TaskID: updated.ID.String(),
		Status: string(after),
	})
	s.logger.Info("task queued for retry", "task_id", updated.ID, "retry_count", updated.Metrics.RetryCount)
	return cloneTask(updated), nil
}

// Cancel stops a task and records the reason in its result.
func (s *TaskService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	before, after, err := applyStatus(updated, taskqueue.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled by user"
	}
	updated.Result = taskqueue.NewCancelledResult(reason)
	completed := time.Now().UTC()
	updated.Metrics.CompletedAt = &completed

	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	s.observeStatusChange(updated, before, after)
	s.state.publish(events.Event{
		Type:   events.TypeTaskCancelled,
		TaskID: updated.ID.String(),
		Status: string(taskqueue.StatusCancelled),
	})
	s.logger.Info("task cancelled", "task_id", updated.ID, "reason", reason)
	return cloneTask(updated), nil
}

// Delete removes a task entirely.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if err := s.state.deleteTask(id); err != nil {
		return err
	}
	delete(s.state.tasks, id)

	if s.state.metrics != nil && !task.EffectiveStatus().IsTerminal() {
		s.state.metrics.TasksActive.Dec()
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// AddDependency links a task to an upstream task.
func (s *TaskService) AddDependency(ctx context.Context, id uuid.UUID, dep taskqueue.Dependency) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	upstream, ok := s.state.tasks[dep.TaskID]
	if !ok {
		return nil, fmt.Errorf("%w: dependency target %s", ErrTaskNotFound, dep.TaskID)
	}
	if dep.TaskName == "" {
		dep.TaskName = upstream.Name
	}
	updated := cloneTask(task)
	updated.AddDependency(dep)

	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	s.logger.Info("dependency added", "task_id", id, "depends_on", dep.TaskID, "correlation_id", dep.CorrelationID)
	return cloneTask(updated), nil
}

// Dependencies returns the task's dependency list.
func (s *TaskService) Dependencies(ctx context.Context, id uuid.UUID) ([]taskqueue.Dependency, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return cloneTask(task).Dependencies, nil
}

// SetPriority changes the task's queue priority.
func (s *TaskService) SetPriority(ctx context.Context, id uuid.UUID, priority taskqueue.TaskPriority) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	updated.Priority = priority
	updated.UpdatedAt = time.Now().UTC()

	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	s.logger.Info("task priority updated", "task_id", id, "priority", priority)
	return cloneTask(updated), nil
}

// Correlations returns the distinct non-empty correlation ids across the
// task's dependencies.
func (s *TaskService) Correlations(ctx context.Context, id uuid.UUID) ([]string, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	seen := make(map[string]struct{})
	var out []string
	for _, dep := range task.Dependencies {
		if dep.CorrelationID == "" {
			continue
		}
		if _, dup := seen[dep.CorrelationID]; dup {
			continue
		}
		seen[dep.CorrelationID] = struct{}{}
		out = append(out, dep.CorrelationID)
	}
	return out, nil
}

// AdvanceWorkflow moves the task's development workflow one phase forward.
func (s *TaskService) AdvanceWorkflow(ctx context.Context, id uuid.UUID) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	before := updated.EffectiveStatus()
	if err := updated.AdvanceWorkflowPhase(); err != nil {
		return nil, err
	}
	if err := s.commitTask(updated); err != nil {
		return nil, err
	}

	s.observeStatusChange(updated, before, updated.EffectiveStatus())
	s.logger.Info("workflow phase advanced", "task_id", updated.ID, "phase", updated.Workflow.Status)
	return cloneTask(updated), nil
}

// AdvancePhase moves the task one step along the development phase ladder.
func (s *TaskService) AdvancePhase(ctx context.Context, id uuid.UUID) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	before := updated.EffectiveStatus()
	next, err := updated.AdvancePhase()
	if err != nil {
		return nil, err
	}
	if err := s.commitTask(updated); err != nil {
		return nil, err
	}

	s.observeStatusChange(updated, before, updated.EffectiveStatus())
	s.logger.Info("task phase advanced", "task_id", updated.ID, "phase", next)
	return cloneTask(updated), nil
}

// SetTechnicalDocumentation records the documentation path on the task's
// workflow. The workflow does not need to have started yet.
func (s *TaskService) SetTechnicalDocumentation(ctx context.Context, id uuid.UUID, path string) (*taskqueue.Task, error) {
	return s.updateWorkflow(id, func(task *taskqueue.Task) error {
		task.Workflow.TechnicalDocumentationPath = path
		return nil
	})
}

// SetTestCoverage records the measured test coverage as a fraction in [0, 1].
func (s *TaskService) SetTestCoverage(ctx context.Context, id uuid.UUID, coverage float64) (*taskqueue.Task, error) {
	if coverage < 0 || coverage > 1 {
		return nil, fmt.Errorf("%w: test coverage must be between 0 and 1, got %v", ErrValidation, coverage)
	}
	return s.updateWorkflow(id, func(task *taskqueue.Task) error {
		task.Workflow.TestCoverage = &coverage
		return nil
	})
}

// AddAIReviewReport appends a review report to a started workflow.
func (s *TaskService) AddAIReviewReport(ctx context.Context, id uuid.UUID, review taskqueue.AIDevelopmentReview) (*taskqueue.Task, error) {
	if review.ModelName == "" {
		return nil, fmt.Errorf("%w: review model name is required", ErrValidation)
	}
	return s.updateWorkflow(id, func(task *taskqueue.Task) error {
		task.AddAIReview(review)
		return nil
	})
}

// updateWorkflow applies a mutation to the task's development workflow.
func (s *TaskService) updateWorkflow(id uuid.UUID, mutate func(*taskqueue.Task) error) (*taskqueue.Task, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	task, ok := s.state.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := cloneTask(task)
	if updated.Workflow == nil {
		updated.Workflow = taskqueue.NewDevelopmentWorkflow()
	}
	if err := mutate(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.commitTask(updated); err != nil {
		return nil, err
	}
	return cloneTask(updated), nil
}
