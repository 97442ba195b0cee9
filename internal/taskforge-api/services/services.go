// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package services implements the queue's business logic. The services keep
// the authoritative task, workflow and project records in memory and write
// through to storage on every mutation.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/clients/vectorizer"
	"github.com/taskforge/taskforge/internal/storage"
	"github.com/taskforge/taskforge/internal/taskforge-api/events"
	"github.com/taskforge/taskforge/internal/taskforge-api/metrics"
	"github.com/taskforge/taskforge/internal/taskforge-api/tracking"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

type Services struct {
	TaskService     *TaskService
	ProjectService  *ProjectService
	WorkflowService *WorkflowService

	state *queueState
}

// queueState is the shared in-memory view of the queue, guarded by one lock
// across all three entity types so cross-entity operations stay consistent.
type queueState struct {
	mu        sync.RWMutex
	tasks     map[uuid.UUID]*taskqueue.Task
	workflows map[uuid.UUID]*taskqueue.Workflow
	projects  map[uuid.UUID]*taskqueue.Project

	store   *storage.Store
	tracker *tracking.Tracker
	vec     *vectorizer.Client
	hub     *events.Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServices loads all persisted records into memory and wires the services.
// The tracker, vectorizer, hub and metrics may be nil when the corresponding
// feature is disabled.
func NewServices(store *storage.Store, tracker *tracking.Tracker, vec *vectorizer.Client,
	hub *events.Hub, m *metrics.Metrics, logger *slog.Logger) (*Services, error) {

	state := &queueState{
		tasks:     make(map[uuid.UUID]*taskqueue.Task),
		workflows: make(map[uuid.UUID]*taskqueue.Workflow),
		projects:  make(map[uuid.UUID]*taskqueue.Project),
		store:     store,
		tracker:   tracker,
		vec:       vec,
		hub:       hub,
		metrics:   m,
		logger:    logger,
	}
	if err := state.load(); err != nil {
		return nil, err
	}

	return &Services{
		TaskService:     NewTaskService(state, logger.With("service", "task")),
		ProjectService:  NewProjectService(state, logger.With("service", "project")),
		WorkflowService: NewWorkflowService(state, logger.With("service", "workflow")),
		state:           state,
	}, nil
}

// QueueStats is the aggregate view returned by the stats endpoint.
type QueueStats struct {
	TotalTasks     int            `json:"total_tasks"`
	TasksByStatus  map[string]int `json:"tasks_by_status"`
	ActiveTasks    int            `json:"active_tasks"`
	TotalWorkflows int            `json:"total_workflows"`
	TotalProjects  int            `json:"total_projects"`
	Storage        storage.Stats  `json:"storage"`
}

// Stats aggregates queue counts and storage figures.
func (s *Services) Stats() (QueueStats, error) {
	storageStats, err := s.state.store.Stats()
	if err != nil {
		return QueueStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	stats := QueueStats{
		TasksByStatus:  make(map[string]int),
		TotalTasks:     len(s.state.tasks),
		TotalWorkflows: len(s.state.workflows),
		TotalProjects:  len(s.state.projects),
		Storage:        storageStats,
	}
	for _, task := range s.state.tasks {
		status := task.EffectiveStatus()
		stats.TasksByStatus[string(status)]++
		if !status.IsTerminal() {
			stats.ActiveTasks++
		}
	}
	return stats, nil
}

// load reads every persisted record into the in-memory maps. Records that no
// longer decode are skipped with a warning rather than blocking startup.
func (s *queueState) load() error {
	taskRecords, err := s.store.List(storage.KeyspaceTasks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	for _, raw := range taskRecords {
		var task taskqueue.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			s.logger.Warn("skipping undecodable task record", "error", err)
			continue
		}
		s.tasks[task.ID] = &task
	}

	workflowRecords, err := s.store.List(storage.KeyspaceWorkflows)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	for _, raw := range workflowRecords {
		var wf taskqueue.Workflow
		if err := json.Unmarshal(raw, &wf); err != nil {
			s.logger.Warn("skipping undecodable workflow record", "error", err)
			continue
		}
		s.workflows[wf.ID] = &wf
	}

	projectRecords, err := s.store.List(storage.KeyspaceProjects)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	for _, raw := range projectRecords {
		var project taskqueue.Project
		if err := json.Unmarshal(raw, &project); err != nil {
			s.logger.Warn("skipping undecodable project record", "error", err)
			continue
		}
		s.projects[project.ID] = &project
	}

	if s.metrics != nil {
		active := 0
		for _, task := range s.tasks {
			if !task.EffectiveStatus().IsTerminal() {
				active++
			}
		}
		s.metrics.TasksActive.Set(float64(active))
	}

	s.logger.Info("loaded queue state",
		"tasks", len(s.tasks), "workflows", len(s.workflows), "projects", len(s.projects))
	return nil
}

// Write-through helpers. Callers hold the state lock.

func (s *queueState) saveTask(task *taskqueue.Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%w: failed to encode task %s: %v", ErrStorage, task.ID, err)
	}
	if err := s.store.Put(storage.KeyspaceTasks, task.ID.String(), raw); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *queueState) deleteTask(id uuid.UUID) error {
	if err := s.store.Delete(storage.KeyspaceTasks, id.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *queueState) saveWorkflow(wf *taskqueue.Workflow) error {
	raw, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("%w: failed to encode workflow %s: %v", ErrStorage, wf.ID, err)
	}
	if err := s.store.Put(storage.KeyspaceWorkflows, wf.ID.String(), raw); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *queueState) saveProject(project *taskqueue.Project) error {
	raw, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("%w: failed to encode project %s: %v", ErrStorage, project.ID, err)
	}
	if err := s.store.Put(storage.KeyspaceProjects, project.ID.String(), raw); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *queueState) deleteProject(id uuid.UUID) error {
	if err := s.store.Delete(storage.KeyspaceProjects, id.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *queueState) publish(event events.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}

// The clone helpers hand callers a snapshot so nothing outside the lock can
// observe in-place mutations. Entities always marshal, the JSON round trip
// cannot fail.

func cloneTask(task *taskqueue.Task) *taskqueue.Task {
	raw, _ := json.Marshal(task)
	var out taskqueue.Task
	_ = json.Unmarshal(raw, &out)
	return &out
}

func cloneWorkflow(wf *taskqueue.Workflow) *taskqueue.Workflow {
	raw, _ := json.Marshal(wf)
	var out taskqueue.Workflow
	_ = json.Unmarshal(raw, &out)
	return &out
}

func cloneProject(project *taskqueue.Project) *taskqueue.Project {
	raw, _ := json.Marshal(project)
	var out taskqueue.Project
	_ = json.Unmarshal(raw, &out)
	return &out
}
