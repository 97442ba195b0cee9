// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration wraps time.Duration so that it serializes as a human readable
// string ("30s", "5m") instead of nanoseconds.
type Duration struct {
	time.Duration
}

// Seconds constructs a Duration of n seconds.
func Seconds(n int) Duration {
	return Duration{time.Duration(n) * time.Second}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Plain numbers are treated as seconds.
		var secs float64
		if err2 := json.Unmarshal(data, &secs); err2 == nil {
			d.Duration = time.Duration(secs * float64(time.Second))
			return nil
		}
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// SuccessResult carries the output of a successfully finished task.
type SuccessResult struct {
	Output    string   `json:"output"`
	Artifacts []string `json:"artifacts,omitempty"`
}

// FailureResult carries the error of a failed task.
type FailureResult struct {
	Error    string   `json:"error"`
	ExitCode *int     `json:"exit_code,omitempty"`
	Logs     []string `json:"logs,omitempty"`
}

// CancelledResult carries the reason a task was cancelled.
type CancelledResult struct {
	Reason string `json:"reason"`
}

// TaskResult is an externally tagged union, exactly one branch is set.
// On the wire it looks like {"Success": {...}}, {"Failure": {...}} or
// {"Cancelled": {...}}, matching what existing clients expect.
type TaskResult struct {
	Success   *SuccessResult   `json:"Success,omitempty"`
	Failure   *FailureResult   `json:"Failure,omitempty"`
	Cancelled *CancelledResult `json:"Cancelled,omitempty"`
}

// NewSuccessResult builds a success result.
func NewSuccessResult(output string, artifacts ...string) *TaskResult {
	return &TaskResult{Success: &SuccessResult{Output: output, Artifacts: artifacts}}
}

// NewFailureResult builds a failure result.
func NewFailureResult(errMsg string) *TaskResult {
	return &TaskResult{Failure: &FailureResult{Error: errMsg}}
}

// NewCancelledResult builds a cancellation result.
func NewCancelledResult(reason string) *TaskResult {
	return &TaskResult{Cancelled: &CancelledResult{Reason: reason}}
}

// IsSuccess reports whether the result is the success branch.
func (r *TaskResult) IsSuccess() bool { return r != nil && r.Success != nil }

// IsFailure reports whether the result is the failure branch.
func (r *TaskResult) IsFailure() bool { return r != nil && r.Failure != nil }

// TaskMetrics records queue timing for a task.
type TaskMetrics struct {
	SubmittedAt       time.Time  `json:"submitted_at"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	ExecutionDuration *Duration  `json:"execution_duration,omitempty"`
	WaitDuration      *Duration  `json:"wait_duration,omitempty"`
	RetryCount        int        `json:"retry_count"`
}

// DependencyCondition says what outcome of the upstream task satisfies a
// dependency. The three built-in conditions serialize as bare strings;
// custom expressions serialize as {"Custom": "<expr>"}.
type DependencyCondition struct {
	kind   string
	custom string
}

const (
	conditionSuccess    = "Success"
	conditionFailure    = "Failure"
	conditionCompletion = "Completion"
	conditionCustom     = "Custom"
)

var (
	// ConditionSuccess is satisfied when the upstream task succeeded.
	ConditionSuccess = DependencyCondition{kind: conditionSuccess}
	// ConditionFailure is satisfied when the upstream task failed.
	ConditionFailure = DependencyCondition{kind: conditionFailure}
	// ConditionCompletion is satisfied once the upstream task finished either way.
	ConditionCompletion = DependencyCondition{kind: conditionCompletion}
)

// CustomCondition builds a custom condition from an expression string.
func CustomCondition(expr string) DependencyCondition {
	return DependencyCondition{kind: conditionCustom, custom: expr}
}

// IsZero reports whether the condition was never set.
func (c DependencyCondition) IsZero() bool { return c.kind == "" }

// Custom returns the custom expression and whether the condition is custom.
func (c DependencyCondition) Custom() (string, bool) {
	return c.custom, c.kind == conditionCustom
}

func (c DependencyCondition) String() string {
	if c.kind == conditionCustom {
		return conditionCustom + "(" + c.custom + ")"
	}
	return c.kind
}

func (c DependencyCondition) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case conditionCustom:
		return json.Marshal(map[string]string{conditionCustom: c.custom})
	case conditionSuccess, conditionFailure, conditionCompletion:
		return json.Marshal(c.kind)
	case "":
		return json.Marshal(conditionSuccess)
	}
	return nil, fmt.Errorf("unknown dependency condition %q", c.kind)
}

func (c *DependencyCondition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case conditionSuccess, conditionFailure, conditionCompletion:
			*c = DependencyCondition{kind: s}
			return nil
		}
		return fmt.Errorf("unknown dependency condition %q", s)
	}
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid dependency condition: %w", err)
	}
	expr, ok := obj[conditionCustom]
	if !ok {
		return fmt.Errorf("invalid dependency condition object")
	}
	*c = CustomCondition(expr)
	return nil
}

// SatisfiedBy reports whether the given upstream result satisfies the
// condition. Custom conditions are treated like Completion, the queue does
// not evaluate expressions.
func (c DependencyCondition) SatisfiedBy(result *TaskResult) bool {
	if result == nil {
		return false
	}
	switch c.kind {
	case conditionSuccess, "":
		return result.IsSuccess()
	case conditionFailure:
		return result.IsFailure()
	default:
		return true
	}
}
