// Package persistence provides standardized error types for storage operations.
package persistence

import "errors"

// Standard not-found sentinels that every implementation returns.
var (
	// ErrAutomationNotFound indicates no automation exists for the given id.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrWorkflowNotFound indicates no workflow exists for the given id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates no execution record exists for the given id.
	ErrExecutionNotFound = errors.New("execution not found")
)

// IsAutomationNotFound checks if an error indicates a missing automation.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates a missing execution record.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsNotFound checks for any of the not-found sentinels.
func IsNotFound(err error) bool {
	return IsAutomationNotFound(err) || IsWorkflowNotFound(err) || IsExecutionNotFound(err)
}
