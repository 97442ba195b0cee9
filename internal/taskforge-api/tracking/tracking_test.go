// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tracking

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/taskqueue"
)

func readLedger(t *testing.T, dir string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	return string(content)
}

func TestProjectCreatedWritesLedger(t *testing.T) {
	dir := t.TempDir()
	project := taskqueue.NewProject("alpha")
	project.Description = "demo project"
	project.DirectoryPath = dir

	New(slog.Default()).ProjectCreated(project)

	content := readLedger(t, dir)
	assert.Contains(t, content, "# Task IDs for project: alpha")
	assert.Contains(t, content, "# ID: "+project.ID.String())
	assert.Contains(t, content, "# Description: demo project")
	assert.True(t, strings.HasSuffix(content, taskListMarker+"\n"))
}

func TestProjectCreatedDefaultsDescription(t *testing.T) {
	dir := t.TempDir()
	project := taskqueue.NewProject("alpha")
	project.DirectoryPath = dir

	New(slog.Default()).ProjectCreated(project)

	assert.Contains(t, readLedger(t, dir), "# Description: No description")
}

func TestTaskSubmittedInsertsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	project := taskqueue.NewProject("alpha")
	project.DirectoryPath = dir
	tracker := New(slog.Default())
	tracker.ProjectCreated(project)

	first := taskqueue.NewTask("first", "echo one")
	second := taskqueue.NewTask("second", "echo two")
	tracker.TaskSubmitted(project, first)
	tracker.TaskSubmitted(project, second)

	content := readLedger(t, dir)
	assert.Contains(t, content, "# "+first.ID.String()+": first")
	assert.Contains(t, content, "#   Command: echo two")
	assert.Less(t,
		strings.Index(content, second.ID.String()),
		strings.Index(content, first.ID.String()),
		"newest entry should come right after the marker")
}

func TestTaskSubmittedCreatesMissingLedger(t *testing.T) {
	dir := t.TempDir()
	project := taskqueue.NewProject("alpha")
	project.DirectoryPath = dir

	task := taskqueue.NewTask("build", "make build")
	New(slog.Default()).TaskSubmitted(project, task)

	content := readLedger(t, dir)
	assert.Contains(t, content, taskListMarker)
	assert.Contains(t, content, task.ID.String())
}

func TestTrackerIgnoresProjectsWithoutDirectory(t *testing.T) {
	project := taskqueue.NewProject("alpha")
	tracker := New(slog.Default())

	// Must not panic or create anything
	tracker.ProjectCreated(project)
	tracker.TaskSubmitted(project, taskqueue.NewTask("build", "make build"))
	tracker.TaskSubmitted(nil, taskqueue.NewTask("build", "make build"))
}
