// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import "errors"

// ErrTransition marks a status or workflow move the state machine rejects.
var ErrTransition = errors.New("invalid status transition")
