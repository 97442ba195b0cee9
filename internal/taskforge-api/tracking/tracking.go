// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracking maintains the .tasks ledger files written into project
// directories. The ledger lets coding agents see which tasks already exist
// for a project before creating new ones. All writes are best effort, a
// failed write is logged and never fails the originating operation.
package tracking

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taskforge/taskforge/internal/taskqueue"
)

// FileName is the ledger file created inside each project directory.
const FileName = ".tasks"

// taskListMarker is the line new task entries are appended after.
const taskListMarker = "# Task IDs (add new tasks below):"

// Tracker writes .tasks ledger files.
type Tracker struct {
	logger *slog.Logger
}

// New creates a tracker.
func New(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger.With("component", "tracking")}
}

// ProjectCreated writes a fresh ledger into the project directory. Nothing
// happens when the project has no directory configured.
func (t *Tracker) ProjectCreated(project *taskqueue.Project) {
	if t == nil || project.DirectoryPath == "" {
		return
	}

	description := project.Description
	if description == "" {
		description = "No description"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Task IDs for project: %s\n", project.Name)
	b.WriteString("# This file tracks all tasks created for this project\n")
	b.WriteString("# AI models should check this file before creating new projects/tasks\n")
	b.WriteString("# to avoid duplication. Add new task IDs as they are created.\n")
	b.WriteString("# Format: task_id: description\n\n")
	b.WriteString("# Project Information:\n")
	fmt.Fprintf(&b, "# ID: %s\n", project.ID)
	fmt.Fprintf(&b, "# Name: %s\n", project.Name)
	fmt.Fprintf(&b, "# Description: %s\n", description)
	fmt.Fprintf(&b, "# Created: %s\n\n", project.CreatedAt.Format(time.RFC3339))
	b.WriteString(taskListMarker + "\n")

	path := filepath.Join(project.DirectoryPath, FileName)
	if err := os.MkdirAll(project.DirectoryPath, 0o755); err != nil {
		t.logger.Warn("failed to create project directory", "path", project.DirectoryPath, "error", err)
		return
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.logger.Warn("failed to write tasks ledger", "path", path, "error", err)
		return
	}
	t.logger.Debug("wrote tasks ledger", "path", path, "project_id", project.ID)
}

// TaskSubmitted appends the task to the project ledger. The entry is
// inserted right after the task list marker so the newest task comes first.
func (t *Tracker) TaskSubmitted(project *taskqueue.Project, task *taskqueue.Task) {
	if t == nil || project == nil || project.DirectoryPath == "" {
		return
	}

	path := filepath.Join(project.DirectoryPath, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.ProjectCreated(project)
			if content, err = os.ReadFile(path); err != nil {
				return
			}
		} else {
			t.logger.Warn("failed to read tasks ledger", "path", path, "error", err)
			return
		}
	}

	entry := fmt.Sprintf("# %s: %s\n#   Created: %s\n#   Status: %s\n#   Command: %s\n\n",
		task.ID, task.Name,
		task.CreatedAt.Format(time.RFC3339),
		task.EffectiveStatus(), task.Command)

	lines := strings.SplitAfter(string(content), "\n")
	var b strings.Builder
	inserted := false
	for _, line := range lines {
		b.WriteString(line)
		if !inserted && strings.TrimRight(line, "\n") == taskListMarker {
			b.WriteString(entry)
			inserted = true
		}
	}
	if !inserted {
		b.WriteString(taskListMarker + "\n")
		b.WriteString(entry)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.logger.Warn("failed to update tasks ledger", "path", path, "error", err)
		return
	}
	t.logger.Debug("recorded task in ledger", "path", path, "task_id", task.ID)
}
