package models

import "time"

// StepKind selects the executable behavior of a workflow step.
type StepKind string

const (
	StepKindAction    StepKind = "action"
	StepKindCondition StepKind = "condition"
	StepKindLoop      StepKind = "loop"
	StepKindParallel  StepKind = "parallel"
	StepKindDelay     StepKind = "delay"
)

// RetryKind labels the workflow-level retry policy.
type RetryKind string

const (
	RetryNone        RetryKind = "none"
	RetryFixed       RetryKind = "fixed"
	RetryExponential RetryKind = "exponential"
)

// OnErrorBehavior governs a step failure that has no failure edge.
type OnErrorBehavior string

const (
	OnErrorStop     OnErrorBehavior = "stop"
	OnErrorContinue OnErrorBehavior = "continue"
	OnErrorRollback OnErrorBehavior = "rollback"
)

// Step is one node in a workflow graph. Steps reference each other only by
// id; OnSuccess and OnFailure name the next step or are nil for terminal.
type Step struct {
	ID         string         `json:"id"   validate:"required"`
	Name       string         `json:"name" validate:"required"`
	Kind       StepKind       `json:"kind" validate:"required"`
	PlatformID string         `json:"platform_id,omitempty"`
	Config     map[string]any `json:"config,omitempty"`
	OnSuccess  *string        `json:"on_success,omitempty"`
	OnFailure  *string        `json:"on_failure,omitempty"`
	TimeoutMs  int            `json:"timeout_ms,omitempty"`
}

// ErrorHandling is the workflow-level failure policy.
type ErrorHandling struct {
	Retry      RetryKind       `json:"retry"`
	MaxRetries int             `json:"max_retries"`
	OnError    OnErrorBehavior `json:"on_error"`
}

// TriggerDescriptor describes what starts a workflow.
type TriggerDescriptor struct {
	Kind   string         `json:"kind"`
	Config map[string]any `json:"config,omitempty"`
}

// WorkflowMetadata carries bookkeeping fields for a definition.
type WorkflowMetadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
	Tags      []string  `json:"tags,omitempty"`
}

// WorkflowDefinition is a step graph with success/failure routing.
type WorkflowDefinition struct {
	ID            string            `json:"id"`
	Name          string            `json:"name" validate:"required,min=1"`
	Description   string            `json:"description,omitempty"`
	PlatformID    string            `json:"platform_id,omitempty"`
	Active        bool              `json:"active"`
	Trigger       TriggerDescriptor `json:"trigger"`
	Steps         []*Step           `json:"steps" validate:"required,min=1"`
	ErrorHandling ErrorHandling     `json:"error_handling"`
	Metadata      WorkflowMetadata  `json:"metadata"`
}

// StepByID resolves a step in the definition's own step set.
func (w *WorkflowDefinition) StepByID(id string) (*Step, bool) {
	for _, step := range w.Steps {
		if step.ID == id {
			return step, true
		}
	}

	return nil, false
}

// FirstStepID returns the entry point of the graph.
func (w *WorkflowDefinition) FirstStepID() string {
	if len(w.Steps) == 0 {
		return ""
	}

	return w.Steps[0].ID
}

// Clone returns a deep copy of the definition.
func (w *WorkflowDefinition) Clone() *WorkflowDefinition {
	clone := *w

	if w.Steps != nil {
		clone.Steps = make([]*Step, len(w.Steps))
		for i, step := range w.Steps {
			stepCopy := *step

			if step.Config != nil {
				stepCopy.Config = cloneMap(step.Config)
			}

			if step.OnSuccess != nil {
				next := *step.OnSuccess
				stepCopy.OnSuccess = &next
			}

			if step.OnFailure != nil {
				next := *step.OnFailure
				stepCopy.OnFailure = &next
			}

			clone.Steps[i] = &stepCopy
		}
	}

	if w.Trigger.Config != nil {
		clone.Trigger.Config = cloneMap(w.Trigger.Config)
	}

	if w.Metadata.Tags != nil {
		clone.Metadata.Tags = append([]string(nil), w.Metadata.Tags...)
	}

	return &clone
}

func cloneMap(m map[string]any) map[string]any {
	clone := make(map[string]any, len(m))

	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			clone[k] = cloneMap(nested)

			continue
		}

		clone[k] = v
	}

	return clone
}
