package workflow

import (
	"errors"
	"fmt"
)

// ErrWorkflowInactive is returned when execution is requested for a
// workflow whose active flag is off.
var ErrWorkflowInactive = errors.New("workflow is not active")

// StepError reports a step failure during execution. It is routed to the
// step's failure edge or governed by the workflow's error policy, never
// surfaced straight to the trigger caller.
type StepError struct {
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsStepError checks if the error is a step failure.
func IsStepError(err error) bool {
	var stepErr *StepError

	return errors.As(err, &stepErr)
}

// IsWorkflowInactive checks if the error reports an inactive workflow.
func IsWorkflowInactive(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}
