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

	"github.com/taskforge/taskforge/internal/taskqueue"
)

// ProjectService manages projects and their task associations.
type ProjectService struct {
	state  *queueState
	logger *slog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(state *queueState, logger *slog.Logger) *ProjectService {
	return &ProjectService{state: state, logger: logger}
}

// ProjectUpdate is a partial update. Nil fields are left unchanged.
type ProjectUpdate struct {
	Name             *string
	Description      *string
	Status           *taskqueue.ProjectStatus
	GitRepositoryURL *string
	DirectoryPath    *string
	Tags             *[]string
	DueDate          *time.Time
	Metadata         map[string]any
}

// Create registers a new project and writes its .tasks ledger.
func (s *ProjectService) Create(ctx context.Context, project *taskqueue.Project) (*taskqueue.Project, error) {
	if project.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.Normalize()
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if err := s.state.saveProject(project); err != nil {
		return nil, err
	}
	s.state.projects[project.ID] = project

	s.state.tracker.ProjectCreated(project)
	s.logger.Info("project created", "project_id", project.ID, "name", project.Name)
	return cloneProject(project), nil
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*taskqueue.Project, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	project, ok := s.state.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return cloneProject(project), nil
}

// List returns all projects ordered by creation time.
func (s *ProjectService) List(ctx context.Context) []*taskqueue.Project {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	out := make([]*taskqueue.Project, 0, len(s.state.projects))
	for _, project := range s.state.projects {
		out = append(out, cloneProject(project))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Update applies a partial update to a project.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, update ProjectUpdate) (*taskqueue.Project, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	project, ok := s.state.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	updated := cloneProject(project)

	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("%w: project name cannot be empty", ErrValidation)
		}
		updated.Name = *update.Name
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Status != nil {
		updated.Status = *update.Status
	}
	if update.GitRepositoryURL != nil {
		updated.GitRepositoryURL = *update.GitRepositoryURL
	}
	if update.DirectoryPath != nil {
		updated.DirectoryPath = *update.DirectoryPath
	}
	if update.Tags != nil {
		updated.Tags = *update.Tags
	}
	if update.DueDate != nil {
		updated.DueDate = update.DueDate
	}
	if update.Metadata != nil {
		updated.Metadata = update.Metadata
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.state.saveProject(updated); err != nil {
		return nil, err
	}
	s.state.projects[id] = updated
	s.logger.Info("project updated", "project_id", updated.ID)
	return cloneProject(updated), nil
}

// Delete removes a project. Tasks keep existing but lose their project
// association.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.projects[id]; !ok {
		return ErrProjectNotFound
	}

	for taskID, task := range s.state.tasks {
		if task.ProjectID != id {
			continue
		}
		updated := cloneTask(task)
		updated.ProjectID = uuid.Nil
		updated.UpdatedAt = time.Now().UTC()
		if err := s.state.saveTask(updated); err != nil {
			return err
		}
		s.state.tasks[taskID] = updated
	}

	if err := s.state.deleteProject(id); err != nil {
		return err
	}
	delete(s.state.projects, id)

	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// Tasks returns the tasks associated with a project.
func (s *ProjectService) Tasks(ctx context.Context, id uuid.UUID) ([]*taskqueue.Task, error) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	if _, ok := s.state.projects[id]; !ok {
		return nil, ErrProjectNotFound
	}

	var out []*taskqueue.Task
	for _, task := range s.state.tasks {
		if task.ProjectID == id {
			out = append(out, cloneTask(task))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
