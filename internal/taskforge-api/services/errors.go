// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"errors"

	"github.com/taskforge/taskforge/internal/taskqueue"
)

// Common service errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrWorkflowNotFound   = errors.New("workflow not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrCircularDependency = errors.New("workflow contains a dependency cycle")
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidWorkflow    = errors.New("invalid workflow")
	ErrValidation         = errors.New("validation failed")
	ErrStorage            = errors.New("storage operation failed")
)

// ErrInvalidTransition is the domain transition sentinel, re-exported so
// handlers match it without importing taskqueue.
var ErrInvalidTransition = taskqueue.ErrTransition

// Error codes for API responses
const (
	CodeTaskNotFound      = "TASK_NOT_FOUND"
	CodeWorkflowNotFound  = "WORKFLOW_NOT_FOUND"
	CodeProjectNotFound   = "PROJECT_NOT_FOUND"
	CodeCircularDep       = "CIRCULAR_DEPENDENCY"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeInvalidTask       = "INVALID_TASK"
	CodeInvalidWorkflow   = "INVALID_WORKFLOW"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeStorageError      = "STORAGE_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
)
