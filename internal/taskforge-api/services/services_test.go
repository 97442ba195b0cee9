// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/storage"
	"github.com/taskforge/taskforge/internal/taskforge-api/metrics"
	"github.com/taskforge/taskforge/internal/taskforge-api/tracking"
	"github.com/taskforge/taskforge/internal/taskqueue"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	logger := slog.Default()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svcs, err := NewServices(store, tracking.New(logger), nil, nil, metrics.New(), logger)
	require.NoError(t, err)
	return svcs
}

func newTestProject(t *testing.T, svcs *Services) *taskqueue.Project {
	t.Helper()
	project, err := svcs.ProjectService.Create(context.Background(), taskqueue.NewProject("test-project"))
	require.NoError(t, err)
	return project
}

func newTestTask(t *testing.T, svcs *Services, name string, projectID uuid.UUID) *taskqueue.Task {
	t.Helper()
	task := taskqueue.NewTask(name, "echo hello")
	task.ProjectID = projectID
	submitted, err := svcs.TaskService.Submit(context.Background(), task)
	require.NoError(t, err)
	return submitted
}

func TestSubmitTaskValidation(t *testing.T) {
	svcs := newTestServices(t)
	project := newTestProject(t, svcs)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*taskqueue.Task)
		wantErr error
	}{
		{
			name:    "missing name",
			mutate:  func(task *taskqueue.Task) { task.Name = "" },
			wantErr: ErrInvalidTask,
		},
		{
			name:    "missing command",
			mutate:  func(task *taskqueue.Task) { task.Command = "" },
			wantErr: ErrInvalidTask,
		},
		{
			name:    "missing project",
			mutate:  func(task *taskqueue.Task) { task.ProjectID = uuid.Nil },
			wantErr: ErrInvalidTask,
		},
		{
			name:    "unknown project",
			mutate:  func(task *taskqueue.Task) { task.ProjectID = uuid.New() },
			wantErr: ErrInvalidTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := taskqueue.NewTask("build", "make build")
			task.ProjectID = project.ID
			tt.mutate(task)
			_, err := svcs.TaskService.Submit(ctx, task)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitAndGetTask(t *testing.T) {
	svcs := newTestServices(t)
	project := newTestProject(t, svcs)
	submitted := newTestTask(t, svcs, "build", project.ID)

	got, err := svcs.TaskService.Get(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, "build", got.Name)
	assert.Equal(t, taskqueue.StatusPlanning, got.EffectiveStatus())
	assert.Equal(t, taskqueue.DefaultDescription, got.Description)

	_, err = svcs.TaskService.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasksFilters(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	projectA := newTestProject(t, svcs)
	projectB, err := svcs.ProjectService.Create(ctx, taskqueue.NewProject("other"))
	require.NoError(t, err)

	taskA := newTestTask(t, svcs, "a", projectA.ID)
	newTestTask(t, svcs, "b", projectB.ID)

	_, err = svcs.TaskService.SetStatus(ctx, taskA.ID, taskqueue.StatusInImplementation)
	require.NoError(t, err)

	byProject, err := svcs.TaskService.List(ctx, TaskFilter{ProjectID: projectA.ID})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "a", byProject[0].Name)

	byStatus, err := svcs.TaskService.List(ctx, TaskFilter{Status: "implementation"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "a", byStatus[0].Name)

	// The alias label matches the same tasks.
	byAlias, err := svcs.TaskService.List(ctx, TaskFilter{Status: "in_implementation"})
	require.NoError(t, err)
	assert.Len(t, byAlias, 1)

	_, err = svcs.TaskService.List(ctx, TaskFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetStatusRejectsInvalidTransition(t *testing.T) {
	svcs := newTestServices(t)
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "build", project.ID)

	_, err := svcs.TaskService.SetStatus(context.Background(), task.ID, taskqueue.StatusTesting)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRetryFailedTask(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "build", project.ID)

	_, err := svcs.TaskService.SetStatus(ctx, task.ID, taskqueue.StatusFailed)
	require.NoError(t, err)

	retried, err := svcs.TaskService.Retry(ctx, task.ID, false)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusPending, retried.EffectiveStatus())
	assert.Nil(t, retried.Result)
	assert.Equal(t, 1, retried.Metrics.RetryCount)

	// A pending task cannot be retried again through the transition table
	// once it is back in flight and completed.
	reset, err := svcs.TaskService.Retry(ctx, task.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.Metrics.RetryCount)
}

func TestCancelTaskRecordsReason(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "build", project.ID)

	cancelled, err := svcs.TaskService.Cancel(ctx, task.ID, "no longer needed")
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusCancelled, cancelled.EffectiveStatus())
	require.NotNil(t, cancelled.Result)
	require.NotNil(t, cancelled.Result.Cancelled)
	assert.Equal(t, "no longer needed", cancelled.Result.Cancelled.Reason)

	// Cancelling again is an idempotent no-op, the original reason stays.
	again, err := svcs.TaskService.Cancel(ctx, task.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusCancelled, again.EffectiveStatus())
}

func TestFailedSaveLeavesTaskUnchanged(t *testing.T) {
	logger := slog.Default()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)

	svcs, err := NewServices(store, tracking.New(logger), nil, nil, nil, logger)
	require.NoError(t, err)
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "build", project.ID)

	// With the store gone every write fails; the in-memory record must not
	// move either.
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, err = svcs.TaskService.SetStatus(ctx, task.ID, taskqueue.StatusInImplementation)
	assert.ErrorIs(t, err, ErrStorage)

	got, err := svcs.TaskService.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusPlanning, got.EffectiveStatus())

	_, err = svcs.TaskService.Cancel(ctx, task.ID, "cleanup")
	assert.ErrorIs(t, err, ErrStorage)
	got, err = svcs.TaskService.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusPlanning, got.EffectiveStatus())
	assert.Nil(t, got.Result)
}

func TestAdvancePhaseLadder(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "feature", project.ID)

	for _, want := range []taskqueue.TaskStatus{
		taskqueue.StatusInImplementation,
		taskqueue.StatusTestCreation,
		taskqueue.StatusTesting,
		taskqueue.StatusAIReview,
	} {
		advanced, err := svcs.TaskService.AdvancePhase(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, want, advanced.CurrentPhase)
	}

	// Finalization is gated on the required reviews.
	_, err := svcs.TaskService.AdvancePhase(ctx, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for i := 0; i < taskqueue.DefaultAIReviewsRequired; i++ {
		_, err = svcs.TaskService.AddAIReviewReport(ctx, task.ID, taskqueue.AIDevelopmentReview{
			ModelName:  "reviewer",
			ReviewType: taskqueue.ReviewCodeQuality,
			Approved:   true,
		})
		require.NoError(t, err)
	}

	finalized, err := svcs.TaskService.AdvancePhase(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.StatusFinalized, finalized.CurrentPhase)

	_, err = svcs.TaskService.AdvancePhase(ctx, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetPriorityAndDependencies(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	upstream := newTestTask(t, svcs, "build", project.ID)
	task := newTestTask(t, svcs, "deploy", project.ID)

	updated, err := svcs.TaskService.SetPriority(ctx, task.ID, taskqueue.PriorityCritical)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.PriorityCritical, updated.Priority)

	deps, err := svcs.TaskService.Dependencies(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, deps)

	_, err = svcs.TaskService.AddDependency(ctx, task.ID, taskqueue.Dependency{
		TaskID:   upstream.ID,
		Required: true,
	})
	require.NoError(t, err)

	deps, err = svcs.TaskService.Dependencies(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, upstream.ID, deps[0].TaskID)
	assert.Equal(t, "build", deps[0].TaskName)

	_, err = svcs.TaskService.Dependencies(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpsertTask(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)

	first := taskqueue.NewTask("deploy", "make deploy")
	first.ProjectID = project.ID
	created, isNew, err := svcs.TaskService.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, isNew)

	second := taskqueue.NewTask("deploy", "make deploy-v2")
	second.ProjectID = project.ID
	second.Priority = taskqueue.PriorityHigh
	updated, isNew, err := svcs.TaskService.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "make deploy-v2", updated.Command)
	assert.Equal(t, taskqueue.PriorityHigh, updated.Priority)
}

func TestAddDependencyAndCorrelations(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	upstream := newTestTask(t, svcs, "build", project.ID)
	downstream := newTestTask(t, svcs, "deploy", project.ID)

	_, err := svcs.TaskService.AddDependency(ctx, downstream.ID, taskqueue.Dependency{
		TaskID:        upstream.ID,
		Required:      true,
		CorrelationID: "release-42",
	})
	require.NoError(t, err)

	_, err = svcs.TaskService.AddDependency(ctx, downstream.ID, taskqueue.Dependency{
		TaskID:        upstream.ID,
		Required:      false,
		CorrelationID: "release-42",
	})
	require.NoError(t, err)

	correlations, err := svcs.TaskService.Correlations(ctx, downstream.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"release-42"}, correlations)

	_, err = svcs.TaskService.AddDependency(ctx, downstream.ID, taskqueue.Dependency{TaskID: uuid.New()})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAdvanceWorkflowLifecycle(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "feature", project.ID)

	// Documentation can be recorded before the workflow starts, agents
	// typically write the design doc during Planning.
	early, err := svcs.TaskService.SetTechnicalDocumentation(ctx, task.ID, "docs/design.md")
	require.NoError(t, err)
	assert.Equal(t, "docs/design.md", early.Workflow.TechnicalDocumentationPath)

	advanced, err := svcs.TaskService.AdvanceWorkflow(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.DevPlanning, advanced.Workflow.Status)
	require.NotNil(t, advanced.Workflow.StartedAt)

	_, err = svcs.TaskService.SetTechnicalDocumentation(ctx, task.ID, "docs/design.md")
	require.NoError(t, err)

	_, err = svcs.TaskService.SetTestCoverage(ctx, task.ID, 1.5)
	assert.ErrorIs(t, err, ErrValidation)
	withCoverage, err := svcs.TaskService.SetTestCoverage(ctx, task.ID, 0.85)
	require.NoError(t, err)
	require.NotNil(t, withCoverage.Workflow.TestCoverage)
	assert.InDelta(t, 0.85, *withCoverage.Workflow.TestCoverage, 1e-9)

	// Walk to ai_review.
	for _, want := range []taskqueue.DevWorkflowStatus{
		taskqueue.DevInImplementation,
		taskqueue.DevTestCreation,
		taskqueue.DevTesting,
		taskqueue.DevAIReview,
	} {
		advanced, err = svcs.TaskService.AdvanceWorkflow(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, want, advanced.Workflow.Status)
	}

	// Completion is gated on the required reviews.
	_, err = svcs.TaskService.AdvanceWorkflow(ctx, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for i := 0; i < taskqueue.DefaultAIReviewsRequired; i++ {
		_, err = svcs.TaskService.AddAIReviewReport(ctx, task.ID, taskqueue.AIDevelopmentReview{
			ModelName:  "reviewer",
			ReviewType: taskqueue.ReviewCodeQuality,
			Approved:   true,
		})
		require.NoError(t, err)
	}

	done, err := svcs.TaskService.AdvanceWorkflow(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.DevCompleted, done.Workflow.Status)
	require.NotNil(t, done.Workflow.CompletedAt)
	assert.Equal(t, taskqueue.StatusCompleted, done.EffectiveStatus())
}

func TestProjectLifecycle(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()

	_, err := svcs.ProjectService.Create(ctx, &taskqueue.Project{})
	assert.ErrorIs(t, err, ErrValidation)

	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "build", project.ID)

	newName := "renamed"
	updated, err := svcs.ProjectService.Update(ctx, project.ID, ProjectUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	tasks, err := svcs.ProjectService.Tasks(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	require.NoError(t, svcs.ProjectService.Delete(ctx, project.ID))
	_, err = svcs.ProjectService.Get(ctx, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	// The task survives but loses its association.
	orphan, err := svcs.TaskService.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, orphan.ProjectID)
}

func TestProjectStatusAndTags(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()

	project := newTestProject(t, svcs)
	assert.Equal(t, taskqueue.ProjectPlanning, project.Status)
	assert.NotNil(t, project.Tags)

	status := taskqueue.ProjectActive
	tags := []string{"backend", "q3"}
	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	updated, err := svcs.ProjectService.Update(ctx, project.ID, ProjectUpdate{
		Status:  &status,
		Tags:    &tags,
		DueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, taskqueue.ProjectActive, updated.Status)
	assert.Equal(t, tags, updated.Tags)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))

	got, err := svcs.ProjectService.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.ProjectActive, got.Status)
}

func TestWorkflowSubmitValidation(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()

	_, err := svcs.WorkflowService.Submit(ctx, taskqueue.NewWorkflow(""))
	assert.ErrorIs(t, err, ErrInvalidWorkflow)

	_, err = svcs.WorkflowService.Submit(ctx, taskqueue.NewWorkflow("empty"))
	assert.ErrorIs(t, err, ErrInvalidWorkflow)

	a := taskqueue.NewTask("a", "echo a")
	b := taskqueue.NewTask("b", "echo b")
	cyclic := taskqueue.NewWorkflow("cyclic").AddTask(a).AddTask(b).
		AddDependency(a.ID, b.ID, taskqueue.ConditionSuccess).
		AddDependency(b.ID, a.ID, taskqueue.ConditionSuccess)
	_, err = svcs.WorkflowService.Submit(ctx, cyclic)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestWorkflowLifecycle(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()

	a := taskqueue.NewTask("a", "echo a")
	b := taskqueue.NewTask("b", "echo b")
	wf := taskqueue.NewWorkflow("pipeline").AddTask(a).AddTask(b).
		AddDependency(a.ID, b.ID, taskqueue.ConditionSuccess)

	submitted, err := svcs.WorkflowService.Submit(ctx, wf)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.WorkflowPending, submitted.Status)

	// Workflow tasks become individually addressable.
	_, err = svcs.TaskService.Get(ctx, a.ID)
	require.NoError(t, err)

	approved, err := svcs.WorkflowService.Approve(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.WorkflowRunning, approved.Status)

	_, err = svcs.WorkflowService.Approve(ctx, submitted.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := svcs.WorkflowService.Cancel(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.WorkflowCancelled, cancelled.Status)

	_, err = svcs.WorkflowService.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestStatsAggregation(t *testing.T) {
	svcs := newTestServices(t)
	ctx := context.Background()
	project := newTestProject(t, svcs)
	newTestTask(t, svcs, "one", project.ID)
	task := newTestTask(t, svcs, "two", project.ID)
	_, err := svcs.TaskService.Cancel(ctx, task.ID, "")
	require.NoError(t, err)

	stats, err := svcs.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.ActiveTasks)
	assert.Equal(t, 1, stats.TasksByStatus["planning"])
	assert.Equal(t, 1, stats.TasksByStatus["cancelled"])
	assert.Equal(t, 1, stats.TotalProjects)
}

func TestStateSurvivesRestart(t *testing.T) {
	logger := slog.Default()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.Open(path, logger)
	require.NoError(t, err)

	svcs, err := NewServices(store, nil, nil, nil, nil, logger)
	require.NoError(t, err)
	project := newTestProject(t, svcs)
	task := newTestTask(t, svcs, "persisted", project.ID)
	require.NoError(t, store.Close())

	reopened, err := storage.Open(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	restarted, err := NewServices(reopened, nil, nil, nil, nil, logger)
	require.NoError(t, err)
	got, err := restarted.TaskService.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
	assert.Equal(t, project.ID, got.ProjectID)
}
