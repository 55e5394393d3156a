package automation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/events"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// RetryScheduler accepts failed dispatches for later re-attempts.
type RetryScheduler interface {
	Push(automation *models.AutomationConfig, event dispatch.Event, attempt int)
}

// Dispatcher routes inbound events to the active automations whose
// trigger set and conditions match.
type Dispatcher struct {
	logger   *slog.Logger
	store    persistence.Persistence
	executor *dispatch.Executor
	retries  RetryScheduler
	bus      eventbus.EventPublisher
}

func NewDispatcher(
	logger *slog.Logger,
	store persistence.Persistence,
	executor *dispatch.Executor,
	retries RetryScheduler,
	bus eventbus.EventPublisher,
) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With("module", "automation"),
		store:    store,
		executor: executor,
		retries:  retries,
		bus:      bus,
	}
}

// TriggerEvent dispatches one inbound event. Each active automation
// whose trigger set contains the event kind and whose conditions pass
// gets exactly one dispatch attempt, all attempts running concurrently.
// Failures are captured in the returned results, never as an error;
// retryable failures are handed to the retry scheduler at attempt 1.
func (d *Dispatcher) TriggerEvent(ctx context.Context, kind string, payload, contextData map[string]any) ([]*models.ExecutionResult, error) {
	automations, err := d.store.Automations(ctx)
	if err != nil {
		return nil, err
	}

	event := dispatch.Event{
		Kind:      kind,
		Payload:   payload,
		Context:   contextData,
		Timestamp: time.Now(),
	}

	matched := make([]*models.AutomationConfig, 0, len(automations))

	for _, automation := range automations {
		if !automation.Active || !automation.MatchesEvent(kind) {
			continue
		}

		if len(automation.Conditions) > 0 && !models.EvaluateConditions(automation.Conditions, payload, contextData) {
			d.logger.DebugContext(ctx, "Automation skipped by conditions",
				"automation_id", automation.ID,
				"event_kind", kind,
			)

			continue
		}

		matched = append(matched, automation)
	}

	results := make([]*models.ExecutionResult, len(matched))

	var wg sync.WaitGroup

	for i, automation := range matched {
		wg.Add(1)

		go func(i int, automation *models.AutomationConfig) {
			defer wg.Done()

			results[i] = d.dispatchOne(ctx, automation, event)
		}(i, automation)
	}

	wg.Wait()

	d.logger.InfoContext(ctx, "Event dispatched",
		"event_kind", kind,
		"matched", len(matched),
	)

	return results, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, automation *models.AutomationConfig, event dispatch.Event) *models.ExecutionResult {
	result, dispatchErr := d.executor.Dispatch(ctx, automation, event)
	if dispatchErr == nil {
		d.publish(ctx, automation.ID, events.AutomationDispatched{
			BaseEvent:    d.baseEvent(events.AutomationDispatchedEvent),
			AutomationID: automation.ID,
			EventKind:    event.Kind,
			StatusCode:   result.StatusCode,
			DurationMs:   result.DurationMs,
		})

		return result
	}

	d.publish(ctx, automation.ID, events.AutomationDispatchFailed{
		BaseEvent:    d.baseEvent(events.AutomationDispatchFailedEvent),
		AutomationID: automation.ID,
		EventKind:    event.Kind,
		StatusCode:   dispatchErr.StatusCode,
		Error:        dispatchErr.Error(),
		Retryable:    dispatchErr.Retryable(),
	})

	if dispatchErr.Retryable() && automation.RetryAttempts > 0 && d.retries != nil {
		d.retries.Push(automation, event, 1)

		d.publish(ctx, automation.ID, events.RetryScheduled{
			BaseEvent:    d.baseEvent(events.RetryScheduledEvent),
			AutomationID: automation.ID,
			EventKind:    event.Kind,
			Attempt:      1,
		})
	}

	return result
}

func (d *Dispatcher) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (d *Dispatcher) publish(ctx context.Context, key string, event eventbus.Event) {
	if d.bus == nil {
		return
	}

	if err := d.bus.Publish(ctx, key, event); err != nil {
		d.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}
