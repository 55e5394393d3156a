package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/events"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// DefaultRetryDelay is how long a failed execution waits before its
// failed→pending retry transition.
const DefaultRetryDelay = 5 * time.Second

// AdapterProvider resolves the dispatch adapter for a platform id.
type AdapterProvider interface {
	CreateAdapter(platformID string) (models.Adapter, error)
}

type executionHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine drives workflow executions through the state machine
// pending→running→{completed,failed,cancelled}, with failed→pending
// permitted while the retry budget lasts. Each execution is driven by
// exactly one goroutine; Cancel halts one execution without touching
// the rest.
type Engine struct {
	logger     *slog.Logger
	store      persistence.Persistence
	adapters   AdapterProvider
	bus        eventbus.EventPublisher
	retryDelay time.Duration

	mu      sync.Mutex
	running map[string]*executionHandle
}

func NewEngine(logger *slog.Logger, store persistence.Persistence, adapters AdapterProvider, bus eventbus.EventPublisher) *Engine {
	return &Engine{
		logger:     logger.With("module", "workflow"),
		store:      store,
		adapters:   adapters,
		bus:        bus,
		retryDelay: DefaultRetryDelay,
		running:    make(map[string]*executionHandle),
	}
}

// Execute starts one asynchronous execution of a workflow and returns
// the new execution id. The record is persisted as pending before this
// returns; a dedicated goroutine then drives it to a terminal state.
func (e *Engine) Execute(ctx context.Context, workflowID string, triggerPayload map[string]any) (string, error) {
	workflow, err := e.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		return "", err
	}

	if !workflow.Active {
		return "", fmt.Errorf("%w: %s", ErrWorkflowInactive, workflowID)
	}

	record := &models.ExecutionRecord{
		ID:             uuid.New().String(),
		WorkflowID:     workflow.ID,
		PlatformID:     workflow.PlatformID,
		TriggerPayload: triggerPayload,
		Status:         models.ExecutionPending,
		StartedAt:      time.Now().UTC(),
		Data:           carriedData(triggerPayload),
	}

	if err := e.store.SaveExecution(ctx, record); err != nil {
		return "", fmt.Errorf("failed to persist execution: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	handle := &executionHandle{cancel: cancel, done: make(chan struct{})}

	e.mu.Lock()
	e.running[record.ID] = handle
	e.mu.Unlock()

	go e.drive(runCtx, workflow, record, handle)

	return record.ID, nil
}

// Cancel halts one execution. A running execution stops advancing and
// lands in the cancelled state; cancelling a finished execution is a
// no-op.
func (e *Engine) Cancel(ctx context.Context, executionID string) error {
	e.mu.Lock()
	handle, ok := e.running[executionID]
	e.mu.Unlock()

	if ok {
		handle.cancel()
		<-handle.done

		return nil
	}

	record, err := e.store.ExecutionByID(ctx, executionID)
	if err != nil {
		return err
	}

	if record.Status.Terminal() {
		return nil
	}

	record.Status = models.ExecutionCancelled
	record.AppendLog(models.LogWarn, "Execution cancelled", nil)
	finishRecord(record)

	return e.store.SaveExecution(ctx, record)
}

// WaitForCompletion blocks until the execution reaches a terminal state
// or the context ends. Unknown ids return immediately; the record in the
// store is already terminal.
func (e *Engine) WaitForCompletion(ctx context.Context, executionID string) error {
	e.mu.Lock()
	handle, ok := e.running[executionID]
	e.mu.Unlock()

	if !ok {
		return nil
	}

	select {
	case <-handle.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) drive(ctx context.Context, workflow *models.WorkflowDefinition, record *models.ExecutionRecord, handle *executionHandle) {
	defer func() {
		e.mu.Lock()
		delete(e.running, record.ID)
		e.mu.Unlock()

		close(handle.done)
	}()

	e.publish(ctx, record.ID, events.ExecutionStarted{
		BaseEvent:   e.baseEvent(events.ExecutionStartedEvent),
		ExecutionID: record.ID,
		WorkflowID:  workflow.ID,
	})

	for {
		record.Status = models.ExecutionRunning
		e.save(ctx, record)

		err := e.runSteps(ctx, workflow, record)
		if err == nil {
			e.complete(ctx, workflow, record)

			return
		}

		if ctx.Err() != nil {
			e.cancelled(ctx, workflow, record)

			return
		}

		record.Status = models.ExecutionFailed
		record.Error = err.Error()
		record.AppendLog(models.LogError, "Execution failed", map[string]any{"error": err.Error()})
		e.save(ctx, record)

		e.publish(ctx, record.ID, events.ExecutionFailed{
			BaseEvent:   e.baseEvent(events.ExecutionFailedEvent),
			ExecutionID: record.ID,
			WorkflowID:  workflow.ID,
			Error:       record.Error,
			RetryCount:  record.RetryCount,
			Duration:    time.Since(record.StartedAt),
		})

		if record.RetryCount >= workflow.ErrorHandling.MaxRetries {
			finishRecord(record)
			e.save(ctx, record)

			return
		}

		// failed→pending retry after a fixed delay.
		if !e.wait(ctx) {
			e.cancelled(ctx, workflow, record)

			return
		}

		record.RetryCount++
		record.Status = models.ExecutionPending
		record.Error = ""
		record.Data = carriedData(record.TriggerPayload)
		record.AppendLog(models.LogInfo, "Execution rescheduled",
			map[string]any{"retry_count": record.RetryCount})
		e.save(ctx, record)
	}
}

func (e *Engine) runSteps(ctx context.Context, workflow *models.WorkflowDefinition, record *models.ExecutionRecord) error {
	stepID := workflow.FirstStepID()

	for stepID != "" {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		step, ok := workflow.StepByID(stepID)
		if !ok {
			// Validation rejects dangling edges, so this only
			// happens for a first step id pointing nowhere.
			break
		}

		record.AppendLog(models.LogInfo, "Running step", map[string]any{
			"step_id": step.ID,
			"kind":    string(step.Kind),
		})

		result, err := e.runStep(ctx, step, record.Data)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			record.AppendLog(models.LogError, "Step failed", map[string]any{
				"step_id": step.ID,
				"error":   err.Error(),
			})

			if step.OnFailure != nil {
				stepID = *step.OnFailure

				continue
			}

			if workflow.ErrorHandling.OnError == models.OnErrorContinue {
				record.AppendLog(models.LogWarn, "Continuing past failed step",
					map[string]any{"step_id": step.ID})
				stepID = nextStep(step)

				continue
			}

			if workflow.ErrorHandling.OnError == models.OnErrorRollback {
				record.AppendLog(models.LogWarn,
					"Rollback has no compensating actions, stopping", nil)
			}

			return &StepError{StepID: step.ID, Err: err}
		}

		for key, value := range result {
			record.Data[key] = value
		}

		e.save(ctx, record)

		stepID = nextStep(step)
	}

	return nil
}

func (e *Engine) runStep(ctx context.Context, step *models.Step, data map[string]any) (map[string]any, error) {
	stepCtx := ctx

	if step.TimeoutMs > 0 {
		var cancel context.CancelFunc

		stepCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	switch step.Kind {
	case models.StepKindAction:
		return e.runActionStep(stepCtx, step, data)
	case models.StepKindCondition:
		return runConditionStep(step, data)
	case models.StepKindDelay:
		return runDelayStep(stepCtx, step)
	case models.StepKindLoop, models.StepKindParallel:
		return nil, fmt.Errorf("step kind %q is not supported", step.Kind)
	default:
		return nil, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (e *Engine) runActionStep(ctx context.Context, step *models.Step, data map[string]any) (map[string]any, error) {
	adapter, err := e.adapters.CreateAdapter(step.PlatformID)
	if err != nil {
		return nil, err
	}

	return adapter.Execute(ctx, step, data)
}

func runConditionStep(step *models.Step, data map[string]any) (map[string]any, error) {
	expression, _ := step.Config["expression"].(string)
	if expression == "" {
		return nil, fmt.Errorf("condition step %s has no expression", step.ID)
	}

	program, err := expr.Compile(expression, expr.Env(data), expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	output, err := expr.Run(program, data)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression: %w", err)
	}

	result, ok := output.(bool)
	if !ok {
		return nil, fmt.Errorf("expression did not evaluate to a boolean")
	}

	return map[string]any{"conditionResult": result}, nil
}

func runDelayStep(ctx context.Context, step *models.Step) (map[string]any, error) {
	duration := durationMs(step.Config["duration_ms"])

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return map[string]any{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) complete(ctx context.Context, workflow *models.WorkflowDefinition, record *models.ExecutionRecord) {
	record.Status = models.ExecutionCompleted
	record.Result = record.Data
	record.AppendLog(models.LogInfo, "Execution completed", nil)
	finishRecord(record)
	e.save(ctx, record)

	e.publish(ctx, record.ID, events.ExecutionCompleted{
		BaseEvent:   e.baseEvent(events.ExecutionCompletedEvent),
		ExecutionID: record.ID,
		WorkflowID:  workflow.ID,
		Result:      record.Result,
		Duration:    time.Since(record.StartedAt),
	})

	e.logger.InfoContext(ctx, "Execution completed",
		"execution_id", record.ID,
		"workflow_id", workflow.ID,
	)
}

func (e *Engine) cancelled(ctx context.Context, workflow *models.WorkflowDefinition, record *models.ExecutionRecord) {
	record.Status = models.ExecutionCancelled
	record.AppendLog(models.LogWarn, "Execution cancelled", nil)
	finishRecord(record)

	// The run context is already cancelled; persist with a fresh one.
	e.save(context.WithoutCancel(ctx), record)

	e.publish(context.WithoutCancel(ctx), record.ID, events.ExecutionCancelled{
		BaseEvent:   e.baseEvent(events.ExecutionCancelledEvent),
		ExecutionID: record.ID,
		WorkflowID:  workflow.ID,
	})
}

func (e *Engine) wait(ctx context.Context) bool {
	timer := time.NewTimer(e.retryDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) save(ctx context.Context, record *models.ExecutionRecord) {
	if err := e.store.SaveExecution(ctx, record); err != nil {
		e.logger.ErrorContext(ctx, "Failed to persist execution",
			"execution_id", record.ID,
			"error", err,
		)
	}
}

func (e *Engine) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish execution event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

func finishRecord(record *models.ExecutionRecord) {
	finished := time.Now().UTC()
	record.FinishedAt = &finished
}

func nextStep(step *models.Step) string {
	if step.OnSuccess == nil {
		return ""
	}

	return *step.OnSuccess
}

func carriedData(triggerPayload map[string]any) map[string]any {
	data := make(map[string]any, len(triggerPayload))
	for k, v := range triggerPayload {
		data[k] = v
	}

	return data
}

func durationMs(value any) time.Duration {
	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	default:
		return 0
	}
}
