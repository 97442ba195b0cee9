// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultDescription fills in for tasks submitted without one.
const DefaultDescription = "Task description not available"

// DefaultAIReviewsRequired is the minimum number of AI reviews before a task
// may leave the AIReview phase.
const DefaultAIReviewsRequired = 3

const (
	defaultMaxRetries     = 3
	defaultRetryDelaySecs = 30
)

// Dependency links a task to an upstream task it waits on.
type Dependency struct {
	TaskID        uuid.UUID           `json:"task_id"`
	TaskName      string              `json:"task_name,omitempty"`
	Condition     DependencyCondition `json:"condition"`
	Required      bool                `json:"required"`
	CorrelationID string              `json:"correlation_id,omitempty"`
	Metadata      map[string]any      `json:"metadata,omitempty"`
}

func (d *Dependency) UnmarshalJSON(data []byte) error {
	type alias Dependency
	aux := struct {
		*alias
		Required *bool `json:"required"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	// Absent means required.
	d.Required = aux.Required == nil || *aux.Required
	return nil
}

// TaskPhase is one entry in a task's phase history. At most one entry is
// open (CompletedAt nil) at any time.
type TaskPhase struct {
	Phase         TaskStatus            `json:"phase"`
	StartedAt     time.Time             `json:"started_at"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	Documentation string                `json:"documentation,omitempty"`
	Artifacts     []string              `json:"artifacts,omitempty"`
	AIReviews     []AIDevelopmentReview `json:"ai_reviews,omitempty"`
}

// Task is the unit of work tracked by the queue. Tasks are records, the
// queue never executes commands itself.
type Task struct {
	ID                 uuid.UUID         `json:"id"`
	Name               string            `json:"name"`
	Command            string            `json:"command"`
	Description        string            `json:"description"`
	TaskType           TaskType          `json:"task_type"`
	TechnicalSpecs     string            `json:"technical_specs,omitempty"`
	AcceptanceCriteria []string          `json:"acceptance_criteria"`
	Priority           TaskPriority      `json:"priority"`
	Project            string            `json:"project,omitempty"`
	ProjectID          uuid.UUID         `json:"project_id"`
	WorkingDirectory   string            `json:"working_directory,omitempty"`
	Dependencies       []Dependency      `json:"dependencies"`
	Timeout            *Duration         `json:"timeout,omitempty"`
	MaxRetries         int               `json:"max_retries"`
	RetryDelay         Duration          `json:"retry_delay"`
	EstimatedHours     *int              `json:"estimated_hours,omitempty"`
	Tags               []string          `json:"tags,omitempty"`
	Environment        map[string]string `json:"environment,omitempty"`
	Metadata           map[string]any    `json:"metadata,omitempty"`

	Phases             []TaskPhase          `json:"phases"`
	CurrentPhase       TaskStatus           `json:"current_phase"`
	AIReviewsRequired  int                  `json:"ai_reviews_required"`
	AIReviewsCompleted int                  `json:"ai_reviews_completed"`
	Workflow           *DevelopmentWorkflow `json:"development_workflow,omitempty"`

	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Metrics   TaskMetrics `json:"metrics"`
	Result    *TaskResult `json:"result,omitempty"`
}

// NewTask creates a task in the Planning phase with a fresh development
// workflow attached.
func NewTask(name, command string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:                uuid.New(),
		Name:              name,
		Command:           command,
		Description:       DefaultDescription,
		TaskType:          TypeSimple,
		Priority:          PriorityNormal,
		MaxRetries:        defaultMaxRetries,
		RetryDelay:        Seconds(defaultRetryDelaySecs),
		Phases:            []TaskPhase{{Phase: StatusPlanning, StartedAt: now}},
		CurrentPhase:      StatusPlanning,
		AIReviewsRequired: DefaultAIReviewsRequired,
		Workflow:          NewDevelopmentWorkflow(),
		CreatedAt:         now,
		UpdatedAt:         now,
		Metrics:           TaskMetrics{SubmittedAt: now},
	}
}

type taskAlias Task

// MarshalJSON adds the derived "status" field so clients always see the
// effective status, never a stale stored one.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		taskAlias
		Status TaskStatus `json:"status"`
	}{taskAlias(t), t.EffectiveStatus()})
}

// UnmarshalJSON fills in the defaults older payloads omit.
func (t *Task) UnmarshalJSON(data []byte) error {
	aux := struct {
		*taskAlias
		Status json.RawMessage `json:"status"` // derived, ignored on input
	}{taskAlias: (*taskAlias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Normalize()
	return nil
}

// Normalize applies the documented defaults to a partially populated task.
func (t *Task) Normalize() {
	if t.Description == "" {
		t.Description = DefaultDescription
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	if t.TaskType == "" {
		t.TaskType = TypeSimple
	}
	if t.MaxRetries == 0 {
		t.MaxRetries = defaultMaxRetries
	}
	if t.RetryDelay.Duration == 0 {
		t.RetryDelay = Seconds(defaultRetryDelaySecs)
	}
	if t.CurrentPhase == "" {
		t.CurrentPhase = StatusPlanning
	}
	if len(t.Phases) == 0 {
		started := t.CreatedAt
		if started.IsZero() {
			started = time.Now().UTC()
		}
		t.Phases = []TaskPhase{{Phase: t.CurrentPhase, StartedAt: started}}
	}
	if t.AIReviewsRequired == 0 {
		t.AIReviewsRequired = DefaultAIReviewsRequired
	}
	if t.Workflow == nil {
		t.Workflow = NewDevelopmentWorkflow()
	}
	// Older payloads carry no enabled flag; a present workflow is in use.
	t.Workflow.Enabled = true
	if t.Workflow.AIReviewReports == nil {
		t.Workflow.AIReviewReports = []AIDevelopmentReview{}
	}
	t.AIReviewsCompleted = len(t.Workflow.AIReviewReports)
}

// EffectiveStatus reconciles the phase ladder with the development workflow.
// A started workflow wins; an attached but not started workflow defers to
// the current phase.
func (t *Task) EffectiveStatus() TaskStatus {
	if t.Workflow != nil && t.Workflow.Enabled {
		if t.Workflow.Status != DevNotStarted {
			if s, ok := t.Workflow.Status.TaskStatus(); ok {
				return s
			}
		}
		return t.CurrentPhase
	}
	return t.CurrentPhase
}

// CanTransitionTo reports whether the phase ladder allows moving from the
// current phase to the given status.
func (t *Task) CanTransitionTo(to TaskStatus) bool {
	from := t.CurrentPhase
	if from == to {
		return true
	}
	// Cancellation is always allowed, even from a terminal status.
	if to == StatusCancelled {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusPlanning || to == StatusRunning
	case StatusPlanning:
		return to == StatusInImplementation || to == StatusFailed
	case StatusInImplementation:
		return to == StatusTestCreation || to == StatusFailed
	case StatusTestCreation:
		return to == StatusTesting || to == StatusFailed
	case StatusTesting:
		return to == StatusAIReview || to == StatusFailed
	case StatusAIReview:
		if to == StatusFinalized {
			return t.AIReviewsCompleted >= t.AIReviewsRequired
		}
		return to == StatusInImplementation || to == StatusFailed
	case StatusFinalized:
		return to == StatusCompleted
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	case StatusFailed:
		return to == StatusPlanning || to == StatusInImplementation || to == StatusPending
	}
	return false
}

// SetStatus moves the task to a new status, keeping the phase history
// consistent. A transition to the current status is a no-op.
func (t *Task) SetStatus(to TaskStatus) error {
	if !t.CanTransitionTo(to) {
		if to == StatusFinalized && t.CurrentPhase == StatusAIReview {
			return fmt.Errorf("%w: need %d AI reviews, only %d completed",
				ErrTransition, t.AIReviewsRequired, t.AIReviewsCompleted)
		}
		return fmt.Errorf("%w: %s -> %s", ErrTransition, t.CurrentPhase, to)
	}
	if to == t.CurrentPhase {
		return nil
	}

	now := time.Now().UTC()
	t.closeOpenPhase(now)
	if to.IsLifecyclePhase() {
		t.Phases = append(t.Phases, TaskPhase{Phase: to, StartedAt: now})
	}
	t.CurrentPhase = to
	t.UpdatedAt = now
	return nil
}

func (t *Task) closeOpenPhase(at time.Time) {
	if len(t.Phases) == 0 {
		return
	}
	last := &t.Phases[len(t.Phases)-1]
	if last.CompletedAt == nil {
		completed := at
		last.CompletedAt = &completed
	}
}

// AdvanceWorkflowPhase moves the development workflow one step forward.
// The AIReview to Completed step requires the configured number of reviews.
// A workflow already at Completed stays there.
func (t *Task) AdvanceWorkflowPhase() error {
	now := time.Now().UTC()
	if t.Workflow == nil {
		t.Workflow = NewDevelopmentWorkflow()
	}
	wf := t.Workflow
	wf.Enabled = true

	var next DevWorkflowStatus
	switch wf.Status {
	case DevNotStarted:
		next = DevPlanning
		started := now
		wf.StartedAt = &started
	case DevPlanning:
		next = DevInImplementation
	case DevInImplementation:
		next = DevTestCreation
	case DevTestCreation:
		next = DevTesting
	case DevTesting:
		next = DevAIReview
	case DevAIReview:
		if t.AIReviewsCompleted < t.AIReviewsRequired {
			return fmt.Errorf("%w: need %d AI reviews, only %d completed",
				ErrTransition, t.AIReviewsRequired, t.AIReviewsCompleted)
		}
		next = DevCompleted
		completed := now
		wf.CompletedAt = &completed
	case DevCompleted:
		return nil
	default:
		return fmt.Errorf("%w: workflow is %s", ErrTransition, wf.Status)
	}
	wf.Status = next
	t.UpdatedAt = now
	return nil
}

// AddAIReview appends a review report, records it on the current phase
// history entry, and keeps the completed counter in sync.
func (t *Task) AddAIReview(review AIDevelopmentReview) {
	if t.Workflow == nil {
		t.Workflow = NewDevelopmentWorkflow()
	}
	if review.ReviewedAt.IsZero() {
		review.ReviewedAt = time.Now().UTC()
	}
	t.Workflow.AIReviewReports = append(t.Workflow.AIReviewReports, review)
	if n := len(t.Phases); n > 0 {
		t.Phases[n-1].AIReviews = append(t.Phases[n-1].AIReviews, review)
	}
	t.AIReviewsCompleted = len(t.Workflow.AIReviewReports)
	t.UpdatedAt = time.Now().UTC()
}

// AdvancePhase moves the task one step along the phase ladder. The AIReview
// to Finalized step requires the configured number of reviews; a finalized
// task cannot advance further.
func (t *Task) AdvancePhase() (TaskStatus, error) {
	var next TaskStatus
	switch t.CurrentPhase {
	case StatusPlanning:
		next = StatusInImplementation
	case StatusInImplementation:
		next = StatusTestCreation
	case StatusTestCreation:
		next = StatusTesting
	case StatusTesting:
		next = StatusAIReview
	case StatusAIReview:
		next = StatusFinalized
	case StatusFinalized:
		return "", fmt.Errorf("%w: task already finalized", ErrTransition)
	default:
		return "", fmt.Errorf("%w: cannot advance from %s", ErrTransition, t.CurrentPhase)
	}
	if err := t.SetStatus(next); err != nil {
		return "", err
	}
	return next, nil
}

// AddDependency appends a dependency on another task.
func (t *Task) AddDependency(dep Dependency) {
	if dep.Condition.IsZero() {
		dep.Condition = ConditionSuccess
	}
	t.Dependencies = append(t.Dependencies, dep)
	t.UpdatedAt = time.Now().UTC()
}

// DependenciesByCorrelation returns the dependencies sharing a correlation id.
func (t *Task) DependenciesByCorrelation(correlationID string) []Dependency {
	var out []Dependency
	for _, dep := range t.Dependencies {
		if dep.CorrelationID == correlationID {
			out = append(out, dep)
		}
	}
	return out
}

// IsReady reports whether every dependency is satisfied by the given
// upstream results, keyed by task id. Optional dependencies with no result
// yet do not block readiness.
func (t *Task) IsReady(results map[uuid.UUID]*TaskResult) bool {
	for _, dep := range t.Dependencies {
		result, ok := results[dep.TaskID]
		if !ok {
			if dep.Required {
				return false
			}
			continue
		}
		if !dep.Condition.SatisfiedBy(result) {
			return false
		}
	}
	return true
}

// PhaseProgress estimates lifecycle completion as a fraction in [0, 1].
// The AIReview phase scales with the number of completed reviews.
func (t *Task) PhaseProgress() float64 {
	switch t.CurrentPhase {
	case StatusInImplementation:
		return 0.2
	case StatusTestCreation:
		return 0.4
	case StatusTesting:
		return 0.6
	case StatusAIReview:
		ratio := float64(t.AIReviewsCompleted) / float64(t.AIReviewsRequired)
		if ratio > 1 {
			ratio = 1
		}
		return 0.8 + ratio*0.2
	case StatusFinalized, StatusCompleted:
		return 1.0
	default:
		return 0.0
	}
}

// SetResult stores the result and moves the task to the matching terminal
// status, bypassing the phase table the way an execution engine would.
func (t *Task) SetResult(result *TaskResult) {
	now := time.Now().UTC()
	t.Result = result
	switch {
	case result.IsSuccess():
		t.CurrentPhase = StatusCompleted
	case result.IsFailure():
		t.CurrentPhase = StatusFailed
	default:
		t.CurrentPhase = StatusCancelled
	}
	t.closeOpenPhase(now)
	completed := now
	t.Metrics.CompletedAt = &completed
	t.UpdatedAt = now
}
