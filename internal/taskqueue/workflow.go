// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowDependency is an edge in a workflow's task graph.
type WorkflowDependency struct {
	FromTask  uuid.UUID           `json:"from_task"`
	ToTask    uuid.UUID           `json:"to_task"`
	Condition DependencyCondition `json:"condition"`
}

// Workflow is a named DAG of tasks submitted together.
type Workflow struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Tasks        []*Task              `json:"tasks"`
	Dependencies []WorkflowDependency `json:"dependencies"`
	Status       WorkflowStatus       `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
}

// NewWorkflow creates an empty pending workflow.
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		ID:        uuid.New(),
		Name:      name,
		Status:    WorkflowPending,
		CreatedAt: time.Now().UTC(),
	}
}

// AddTask appends a task to the workflow.
func (w *Workflow) AddTask(task *Task) *Workflow {
	w.Tasks = append(w.Tasks, task)
	return w
}

// AddDependency adds an edge from one task to another.
func (w *Workflow) AddDependency(from, to uuid.UUID, condition DependencyCondition) *Workflow {
	w.Dependencies = append(w.Dependencies, WorkflowDependency{FromTask: from, ToTask: to, Condition: condition})
	return w
}

// ReadyTasks returns the tasks whose dependencies are satisfied by the given
// results.
func (w *Workflow) ReadyTasks(results map[uuid.UUID]*TaskResult) []*Task {
	var ready []*Task
	for _, t := range w.Tasks {
		if t.IsReady(results) {
			ready = append(ready, t)
		}
	}
	return ready
}

// HasCycle runs a three color depth first search over the workflow edges and
// reports the first cycle found as an ordered list of task ids.
func (w *Workflow) HasCycle() ([]uuid.UUID, bool) {
	adj := make(map[uuid.UUID][]uuid.UUID, len(w.Tasks))
	for _, t := range w.Tasks {
		adj[t.ID] = nil
	}
	for _, dep := range w.Dependencies {
		adj[dep.FromTask] = append(adj[dep.FromTask], dep.ToTask)
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[uuid.UUID]int, len(adj))
	var stack []uuid.UUID

	var visit func(id uuid.UUID) ([]uuid.UUID, bool)
	visit = func(id uuid.UUID) ([]uuid.UUID, bool) {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				// Slice the stack from the first occurrence of next to
				// report the cycle in traversal order.
				for i, v := range stack {
					if v == next {
						cycle := append([]uuid.UUID{}, stack[i:]...)
						return append(cycle, next), true
					}
				}
				return []uuid.UUID{next, next}, true
			case white:
				if cycle, found := visit(next); found {
					return cycle, true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil, false
	}

	for _, t := range w.Tasks {
		if color[t.ID] == white {
			if cycle, found := visit(t.ID); found {
				return cycle, true
			}
		}
	}
	return nil, false
}
