// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package taskqueue

import "time"

// AIDevelopmentReview is one AI model's review of a task during the AIReview
// phase.
type AIDevelopmentReview struct {
	ModelName   string       `json:"model_name"`
	ReviewType  AIReviewType `json:"review_type"`
	Content     string       `json:"content"`
	Score       *float64     `json:"score,omitempty"`
	Approved    bool         `json:"approved"`
	Suggestions []string     `json:"suggestions,omitempty"`
	ReviewedAt  time.Time    `json:"reviewed_at"`
}

// DevelopmentWorkflow tracks the enforced development lifecycle of a task:
// documentation written during planning, test coverage reached during
// testing, and the AI reviews collected before finalization.
type DevelopmentWorkflow struct {
	Enabled                    bool                  `json:"enabled"`
	Status                     DevWorkflowStatus     `json:"workflow_status"`
	TechnicalDocumentationPath string                `json:"technical_documentation_path,omitempty"`
	TestCoverage               *float64              `json:"test_coverage,omitempty"`
	AIReviewReports            []AIDevelopmentReview `json:"ai_review_reports"`
	StartedAt                  *time.Time            `json:"started_at,omitempty"`
	CompletedAt                *time.Time            `json:"completed_at,omitempty"`
}

// NewDevelopmentWorkflow returns an enabled workflow that has not started.
func NewDevelopmentWorkflow() *DevelopmentWorkflow {
	return &DevelopmentWorkflow{
		Enabled:         true,
		Status:          DevNotStarted,
		AIReviewReports: []AIDevelopmentReview{},
	}
}
