// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package tools

// ServerInstructions is the server-level guidance advertised to MCP clients.
const ServerInstructions = `This is the TaskForge MCP Server - a task queue management system with ` +
	`comprehensive development workflow support. It provides capabilities for:

TASK MANAGEMENT: Submit, track, update, and manage tasks with priorities and dependencies. ` +
	`Each task follows a rigorous development workflow to ensure quality.

DEVELOPMENT WORKFLOW: Automatic workflow enforcement through phases: ` +
	`Planning -> Implementation -> TestCreation -> Testing -> AIReview -> Completed. ` +
	`Each phase has specific requirements and validations.

PROJECT ORGANIZATION: Create and manage projects to organize related tasks. ` +
	`Track project status, tasks, and progress.

AI REVIEW INTEGRATION: Built-in support for AI code reviews with multiple review types ` +
	`(code_quality, security, performance, documentation, testing, architecture). ` +
	`Requires 3 AI model approvals before task completion.

QUALITY ASSURANCE: Enforced test coverage tracking, technical documentation requirements, ` +
	`and acceptance criteria validation.

All operations are designed to enforce best practices and ensure high-quality deliverables.`

// PhaseInstructions returns the workflow guidance for a development phase
// label. The text names the sibling tools an agent should call next.
func PhaseInstructions(status string) string {
	switch status {
	case "not_started", "pending":
		return `WORKFLOW STATUS: NOT STARTED

READY TO BEGIN:
- Use 'advance_workflow_phase' to start the Planning phase
- First step: generate comprehensive technical documentation

Next: Planning phase`
	case "planning":
		return `WORKFLOW STATUS: PLANNING (in progress)

REQUIRED ACTIONS:
1. Generate comprehensive technical documentation in the docs directory
2. Document implementation details, architecture decisions, and technical specifications
3. Create a detailed implementation plan with code examples
4. Document API contracts, data structures, and integration points
5. Use 'set_technical_documentation' to record the documentation path
6. Use 'advance_workflow_phase' when documentation is complete

Do NOT skip phases. Next: Implementation phase`
	case "implementation", "in_implementation":
		return `WORKFLOW STATUS: IMPLEMENTATION (in progress)

CONTINUE IMPLEMENTATION:
- Implement code according to the technical documentation from the Planning phase
- Follow all documented architectural decisions and specifications
- Ensure code quality and follow established patterns
- Use 'advance_workflow_phase' when implementation is complete

Remember: test creation comes AFTER implementation is finished. Next: TestCreation phase`
	case "test_creation":
		return `WORKFLOW STATUS: TEST CREATION (in progress)

CONTINUE TEST CREATION:
- Create a comprehensive test suite (unit, integration, end to end)
- Aim for 90%+ code coverage
- Cover edge cases and error scenarios
- Use 'set_test_coverage' and 'advance_workflow_phase' when the tests are written

Focus: writing tests, not executing them yet. Next: Testing phase`
	case "testing":
		return `WORKFLOW STATUS: TESTING (in progress)

CRITICAL TESTING REQUIREMENTS:
- Actually execute the full test suite and verify the results
- ALL tests must pass before advancing to the AIReview phase
- Achieve at least 85% measured code coverage and record it with 'set_test_coverage'
- Fix any failing tests before proceeding

No advancement without passing tests. Next: AIReview phase`
	case "ai_review":
		return `WORKFLOW STATUS: AI REVIEW (in progress)

CONTINUE AI REVIEW:
- Have 3 different AI models review the code
- Record each review with 'add_ai_review_report'
- Address all critical issues found and document the improvements
- Use 'advance_workflow_phase' once all 3 reviews are recorded

Requirement: 3 reviews before completion. Next: Completed`
	case "completed", "finalized":
		return "WORKFLOW COMPLETED: the task has passed all phases."
	case "failed":
		return "WORKFLOW FAILED: the task did not meet quality standards. Use 'retry_task' to requeue it."
	default:
		return `Use 'advance_workflow_phase' to start the Planning phase.

Next: Planning phase`
	}
}
