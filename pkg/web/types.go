// Package web provides the HTTP handlers and request/response types for
// the hookflow API.
package web

import "github.com/hookflow/hookflow/pkg/models"

// TriggerEventRequest is the body for POST /events.
type TriggerEventRequest struct {
	Kind    string         `json:"kind"    validate:"required,min=1"`
	Payload map[string]any `json:"payload"`
	Context map[string]any `json:"context,omitempty"`
}

// TriggerEventResponse wraps the per-automation dispatch results.
type TriggerEventResponse struct {
	Kind    string                    `json:"kind"`
	Results []*models.ExecutionResult `json:"results"`
}

// RegisterAutomationResponse returns the id assigned at registration.
type RegisterAutomationResponse struct {
	ID string `json:"id"`
}

// ExecuteWorkflowRequest is the body for POST /workflows/:id/executions.
type ExecuteWorkflowRequest struct {
	Payload map[string]any `json:"payload"`
}

// ExecuteWorkflowResponse returns the id of the started execution.
type ExecuteWorkflowResponse struct {
	ExecutionID string `json:"execution_id"`
}

// ConfigurePlatformRequest is the partial auth config merged by
// PUT /platforms/:id/auth.
type ConfigurePlatformRequest struct {
	Auth models.AuthConfig `json:"auth"`
}
