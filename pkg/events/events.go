// Package events defines lifecycle event types published on the event bus.
package events

import "time"

type EventType string

// Topic is the bus topic every lifecycle event is published on.
const Topic = "hookflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Automation dispatch lifecycle.
	AutomationDispatchedEvent     EventType = "automation.dispatched"
	AutomationDispatchFailedEvent EventType = "automation.dispatch.failed"

	// Retry queue lifecycle.
	RetryScheduledEvent EventType = "retry.scheduled"
	RetryDroppedEvent   EventType = "retry.dropped"

	// Workflow execution lifecycle.
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type AutomationDispatched struct {
	BaseEvent

	AutomationID string `json:"automation_id"`
	EventKind    string `json:"event_kind"`
	StatusCode   int    `json:"status_code"`
	DurationMs   int64  `json:"duration_ms"`
}

func (e AutomationDispatched) GetType() EventType {
	return AutomationDispatchedEvent
}

type AutomationDispatchFailed struct {
	BaseEvent

	AutomationID string `json:"automation_id"`
	EventKind    string `json:"event_kind"`
	StatusCode   int    `json:"status_code,omitempty"`
	Error        string `json:"error"`
	Retryable    bool   `json:"retryable"`
}

func (e AutomationDispatchFailed) GetType() EventType {
	return AutomationDispatchFailedEvent
}

type RetryScheduled struct {
	BaseEvent

	AutomationID string `json:"automation_id"`
	EventKind    string `json:"event_kind"`
	Attempt      int    `json:"attempt"`
}

func (e RetryScheduled) GetType() EventType {
	return RetryScheduledEvent
}

type RetryDropped struct {
	BaseEvent

	AutomationID string `json:"automation_id"`
	EventKind    string `json:"event_kind"`
	Attempts     int    `json:"attempts"`
}

func (e RetryDropped) GetType() EventType {
	return RetryDroppedEvent
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	Result      map[string]any `json:"result,omitempty"`
	Duration    time.Duration  `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	Error       string        `json:"error"`
	RetryCount  int           `json:"retry_count"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type ExecutionCancelled struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
}

func (e ExecutionCancelled) GetType() EventType {
	return ExecutionCancelledEvent
}
