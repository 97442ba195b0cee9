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

// WorkflowService manages multi-task workflows.
type WorkflowService struct {
	state  *queueState
	logger *slog.Logger
}

// NewWorkflowService creates a new workflow service.
func NewWorkflowService(state *queueState, logger *slog.Logger) *WorkflowService {
	return &WorkflowService{state: state, logger: logger}
}

// Submit validates and registers a workflow. Its tasks are registered as
// individual queue tasks as well so they can be tracked and transitioned on
// their own.
func (s *WorkflowService) Submit(ctx context.Context, wf *taskqueue.Workflow) (*taskqueue.Workflow, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if err := s.validateWorkflow(wf); err != nil {
		return nil, err
	}
	if wf.ID == uuid.Nil {
		wf.ID = uuid.New()
	}
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = time.Now().UTC()
	}
	if wf.Status == "" {
		wf.Status = taskqueue.WorkflowPending
	}

	if err := s.state.saveWorkflow(wf); err != nil {
		return nil, err
	}
	s.state.workflows[wf.ID] = wf

	for _, task := range wf.Tasks {
		if err := s.state.saveTask(task); err != nil {
			return nil, err
		}
		s.state.tasks[task.ID] = task
		if s.state.metrics != nil {
			s.state.metrics.TasksSubmitted.Inc()
			s.state.metrics.TasksActive.Inc()
		}
	}
	if s.state.metrics != nil {
		s.state.metrics.WorkflowsSubmitted.Inc()
	}
	s.state.publish(events.Event{
		Type:   events.TypeWorkflowSubmitted,
		TaskID: wf.ID.String(),
		Status: string(wf.Status),
	})

	s.logger.Info("workflow submitted", "workflow_id", wf.ID, "name", wf.Name, "tasks", len(wf.Tasks))
	return cloneWorkflow(wf), nil
}

// validateWorkflow checks the submit invariants. The caller holds the lock.
func (s *WorkflowService) validateWorkflow(wf *taskqueue.Workflow) error {
	if wf.Name == "" {
		return fmt.Errorf("%w: workflow name is required", ErrInvalidWorkflow)
	}
	if len(wf.Tasks) == 0 {
		return fmt.Errorf("%w: workflow must contain at least one task", ErrInvalidWorkflow)
	}
	for _, task := range wf.Tasks {
		task.Normalize()
		if task.Name == "" {
			return fmt.Errorf("%w: every workflow task needs a name", ErrInvalidWorkflow)
		}
		if task.Command == "" {
			return fmt.Errorf("%w: task %q has no command", ErrInvalidWorkflow, task.Name)
		}
	}
	if cycle, found := wf.HasCycle(); found {
		return fmt.Errorf("%w: %v", ErrCircularDependency, cycle)
	}
	return nil
}

// Get returns a workflow by id.
func (s *WorkflowService) Get(ctx context.Context, id uuid.UUID) (*taskqueue.Workflow, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	wf, ok := s.state.workflows[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return cloneWorkflow(wf), nil
}

// List returns all workflows ordered by creation time.
func (s *WorkflowService) List(ctx context.Context) []*taskqueue.Workflow {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	out := make([]*taskqueue.Workflow, 0, len(s.state.workflows))
	for _, wf := range s.state.workflows {
		out = append(out, cloneWorkflow(wf))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Cancel stops a workflow.
func (s *WorkflowService) Cancel(ctx context.Context, id uuid.UUID) (*taskqueue.Workflow, error) {
	wf, err := s.setStatus(id, taskqueue.WorkflowCancelled)
	if err != nil {
		return nil, err
	}
	if s.state.metrics != nil {
		s.state.metrics.WorkflowsCancelled.Inc()
	}
	s.logger.Info("workflow cancelled", "workflow_id", id)
	return wf, nil
}

// Approve releases a pending workflow for execution.
func (s *WorkflowService) Approve(ctx context.Context, id uuid.UUID) (*taskqueue.Workflow, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	wf, ok := s.state.workflows[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	if wf.Status != taskqueue.WorkflowPending {
		return nil, fmt.Errorf("%w: workflow is %s, only pending workflows can be approved",
			ErrInvalidTransition, wf.Status)
	}
	updated := cloneWorkflow(wf)
	updated.Status = taskqueue.WorkflowRunning

	if err := s.state.saveWorkflow(updated); err != nil {
		return nil, err
	}
	s.state.workflows[id] = updated
	s.state.publish(events.Event{
		Type:   events.TypeWorkflowUpdated,
		TaskID: updated.ID.String(),
		Status: string(updated.Status),
	})
	s.logger.Info("workflow approved", "workflow_id", id)
	return cloneWorkflow(updated), nil
}

// UpdateStatus sets the workflow status directly.
func (s *WorkflowService) UpdateStatus(ctx context.Context, id uuid.UUID, status taskqueue.WorkflowStatus) (*taskqueue.Workflow, error) {
	wf, err := s.setStatus(id, status)
	if err != nil {
		return nil, err
	}
	if status == taskqueue.WorkflowCompleted && s.state.metrics != nil {
		s.state.metrics.WorkflowsCompleted.Inc()
	}
	return wf, nil
}

func (s *WorkflowService) setStatus(id uuid.UUID, status taskqueue.WorkflowStatus) (*taskqueue.Workflow, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	wf, ok := s.state.workflows[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	updated := cloneWorkflow(wf)
	updated.Status = status

	if err := s.state.saveWorkflow(updated); err != nil {
		return nil, err
	}
	s.state.workflows[id] = updated
	s.state.publish(events.Event{
		Type:   events.TypeWorkflowUpdated,
		TaskID: updated.ID.String(),
		Status: string(status),
	})
	s.logger.Info("workflow status updated", "workflow_id", id, "status", status)
	return cloneWorkflow(updated), nil
}
