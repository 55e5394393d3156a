package models

import "time"

// ExecutionStatus is the lifecycle state of one execution record. Allowed
// transitions: pending→running→{completed,failed,cancelled}, plus
// failed→pending while the retry budget is not exhausted.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transition except
// the failed→pending retry.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionCompleted || s == ExecutionFailed || s == ExecutionCancelled
}

// LogLevel classifies execution log entries.
type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// LogEntry is one line in an execution's ordered log.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// ExecutionRecord tracks one run of a workflow. The engine mutates it in
// place while driving the step graph.
type ExecutionRecord struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"`
	PlatformID     string          `json:"platform_id,omitempty"`
	TriggerPayload map[string]any  `json:"trigger_payload,omitempty"`
	Status         ExecutionStatus `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
	Data           map[string]any  `json:"data,omitempty"`
	Result         map[string]any  `json:"result,omitempty"`
	Error          string          `json:"error,omitempty"`
	RetryCount     int             `json:"retry_count"`
	Logs           []LogEntry      `json:"logs,omitempty"`
}

// AppendLog adds an ordered log entry to the record.
func (r *ExecutionRecord) AppendLog(level LogLevel, message string, data map[string]any) {
	r.Logs = append(r.Logs, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Data:      data,
	})
}

// Clone returns a deep copy of the record.
func (r *ExecutionRecord) Clone() *ExecutionRecord {
	clone := *r

	if r.TriggerPayload != nil {
		clone.TriggerPayload = cloneMap(r.TriggerPayload)
	}

	if r.Data != nil {
		clone.Data = cloneMap(r.Data)
	}

	if r.Result != nil {
		clone.Result = cloneMap(r.Result)
	}

	if r.FinishedAt != nil {
		finished := *r.FinishedAt
		clone.FinishedAt = &finished
	}

	if r.Logs != nil {
		clone.Logs = append([]LogEntry(nil), r.Logs...)
	}

	return &clone
}

// ExecutionResult is the outcome of one dispatch attempt against a
// platform endpoint.
type ExecutionResult struct {
	AutomationID string    `json:"automation_id"`
	EventKind    string    `json:"event_kind"`
	Success      bool      `json:"success"`
	StatusCode   int       `json:"status_code,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	Response     string    `json:"response,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
