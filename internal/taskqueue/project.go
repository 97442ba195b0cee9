// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import (
	"time"

	"github.com/google/uuid"
)

// Project groups tasks and anchors the on-disk .tasks tracking file.
type Project struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Status           ProjectStatus  `json:"status"`
	GitRepositoryURL string         `json:"git_repository_url,omitempty"`
	DirectoryPath    string         `json:"directory_path,omitempty"`
	Tags             []string       `json:"tags"`
	DueDate          *time.Time     `json:"due_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// NewProject creates a project with a fresh id in the Planning state.
func NewProject(name string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.New(),
		Name:      name,
		Status:    ProjectPlanning,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize fills in the defaults older records omit.
func (p *Project) Normalize() {
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}
