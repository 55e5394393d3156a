package models

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateAutomation checks the structural invariants of an automation
// config. Violations surface synchronously to the registration caller and
// nothing is persisted.
func ValidateAutomation(a *AutomationConfig) error {
	if err := validate.Struct(a); err != nil {
		return NewValidationError("", err.Error())
	}

	if len(a.TriggerEvents) == 0 {
		return NewValidationError("trigger_events", "at least one trigger event kind is required")
	}

	parsed, err := url.Parse(a.WebhookURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return NewValidationError("webhook_url", fmt.Sprintf("%q is not an absolute URL", a.WebhookURL))
	}

	if a.TimeoutMs < MinTimeoutMs || a.TimeoutMs > MaxTimeoutMs {
		return NewValidationError("timeout_ms",
			fmt.Sprintf("timeout %d out of range [%d,%d]", a.TimeoutMs, MinTimeoutMs, MaxTimeoutMs))
	}

	if a.RetryAttempts < 0 {
		return NewValidationError("retry_attempts", "retry attempts must not be negative")
	}

	for i, condition := range a.Conditions {
		if condition.Field == "" {
			return NewValidationError(fmt.Sprintf("conditions[%d].field", i), "condition field is required")
		}

		if condition.Operator == "" {
			return NewValidationError(fmt.Sprintf("conditions[%d].operator", i), "condition operator is required")
		}
	}

	return nil
}

// ValidateWorkflow checks a workflow definition, including that every step
// edge resolves to a step in the same workflow. Dangling references are
// rejected here, never surfaced during execution.
func ValidateWorkflow(w *WorkflowDefinition) error {
	if err := validate.Struct(w); err != nil {
		return NewValidationError("", err.Error())
	}

	if len(w.Steps) == 0 {
		return NewValidationError("steps", "a workflow requires at least one step")
	}

	ids := make(map[string]struct{}, len(w.Steps))

	for _, step := range w.Steps {
		if _, exists := ids[step.ID]; exists {
			return NewValidationError("steps", fmt.Sprintf("duplicate step id %q", step.ID))
		}

		ids[step.ID] = struct{}{}
	}

	for _, step := range w.Steps {
		if step.OnSuccess != nil {
			if _, exists := ids[*step.OnSuccess]; !exists {
				return NewValidationError("steps",
					fmt.Sprintf("step %q on_success references unknown step %q", step.ID, *step.OnSuccess))
			}
		}

		if step.OnFailure != nil {
			if _, exists := ids[*step.OnFailure]; !exists {
				return NewValidationError("steps",
					fmt.Sprintf("step %q on_failure references unknown step %q", step.ID, *step.OnFailure))
			}
		}

		if step.TimeoutMs != 0 && (step.TimeoutMs < MinTimeoutMs || step.TimeoutMs > MaxTimeoutMs) {
			return NewValidationError("steps",
				fmt.Sprintf("step %q timeout %d out of range [%d,%d]", step.ID, step.TimeoutMs, MinTimeoutMs, MaxTimeoutMs))
		}
	}

	return nil
}
