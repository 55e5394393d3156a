// Package retry holds failed dispatches and re-attempts them in
// periodic, bounded sweeps.
package retry

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
	"github.com/robfig/cron/v3"
)

const (
	sweepSchedule = "@every 30s"

	// DefaultBatchSize bounds how many items one sweep pops.
	DefaultBatchSize = 5
)

// Item is one pending re-attempt. Attempt counts from 1 for the first
// retry after the original dispatch.
type Item struct {
	Automation *models.AutomationConfig
	Event      dispatch.Event
	Attempt    int
}

// Queue re-attempts retryable dispatch failures. A periodic sweep pops a
// bounded batch; each popped item waits its automation's retry delay
// scaled linearly by the attempt number, then dispatches again. Renewed
// retryable failure re-enqueues the item at attempt+1; items whose
// attempt exceeds the automation's retry budget are dropped with only a
// log line and an event, never an error.
type Queue struct {
	logger    *slog.Logger
	executor  *dispatch.Executor
	bus       eventbus.EventPublisher
	cron      *cron.Cron
	batchSize int

	mu    sync.Mutex
	items []Item
}

func NewQueue(logger *slog.Logger, executor *dispatch.Executor, bus eventbus.EventPublisher) *Queue {
	return &Queue{
		logger:    logger.With("module", "retry"),
		executor:  executor,
		bus:       bus,
		cron:      cron.New(),
		batchSize: DefaultBatchSize,
	}
}

// Push enqueues one re-attempt.
func (q *Queue) Push(automation *models.AutomationConfig, event dispatch.Event, attempt int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, Item{
		Automation: automation.Clone(),
		Event:      event,
		Attempt:    attempt,
	})
}

// Len reports how many items are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Start schedules the periodic sweep.
func (q *Queue) Start(ctx context.Context) error {
	_, err := q.cron.AddFunc(sweepSchedule, func() {
		q.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	q.cron.Start()

	q.logger.InfoContext(ctx, "Retry sweep scheduled", "schedule", sweepSchedule, "batch_size", q.batchSize)

	return nil
}

// Stop halts the periodic sweep and waits for a running one to finish.
func (q *Queue) Stop() {
	<-q.cron.Stop().Done()
}

// Sweep pops one batch and processes its items concurrently, returning
// once every popped item is resolved.
func (q *Queue) Sweep(ctx context.Context) {
	batch := q.pop()
	if len(batch) == 0 {
		return
	}

	var wg sync.WaitGroup

	for _, item := range batch {
		wg.Add(1)

		go func(item Item) {
			defer wg.Done()

			q.process(ctx, item)
		}(item)
	}

	wg.Wait()
}

func (q *Queue) pop() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if n > q.batchSize {
		n = q.batchSize
	}

	batch := make([]Item, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]

	return batch
}

func (q *Queue) process(ctx context.Context, item Item) {
	if item.Attempt > item.Automation.RetryAttempts {
		q.drop(ctx, item)

		return
	}

	// Linear backoff: delay scales with the attempt number.
	delay := time.Duration(item.Automation.RetryDelayMs) * time.Millisecond * time.Duration(item.Attempt)
	if !q.wait(ctx, delay) {
		return
	}

	_, dispatchErr := q.executor.Dispatch(ctx, item.Automation, item.Event)
	if dispatchErr == nil {
		q.logger.InfoContext(ctx, "Retry succeeded",
			"automation_id", item.Automation.ID,
			"attempt", item.Attempt,
		)

		return
	}

	if !dispatchErr.Retryable() {
		q.logger.WarnContext(ctx, "Retry failed with non-retryable error",
			"automation_id", item.Automation.ID,
			"attempt", item.Attempt,
			"status_code", dispatchErr.StatusCode,
		)

		return
	}

	q.Push(item.Automation, item.Event, item.Attempt+1)

	q.publish(ctx, item.Automation.ID, events.RetryScheduled{
		BaseEvent:    q.baseEvent(events.RetryScheduledEvent),
		AutomationID: item.Automation.ID,
		EventKind:    item.Event.Kind,
		Attempt:      item.Attempt + 1,
	})
}

func (q *Queue) drop(ctx context.Context, item Item) {
	q.logger.WarnContext(ctx, "Retry budget exhausted, dropping item",
		"automation_id", item.Automation.ID,
		"event_kind", item.Event.Kind,
		"attempts", item.Attempt-1,
	)

	q.publish(ctx, item.Automation.ID, events.RetryDropped{
		BaseEvent:    q.baseEvent(events.RetryDroppedEvent),
		AutomationID: item.Automation.ID,
		EventKind:    item.Event.Kind,
		Attempts:     item.Attempt - 1,
	})
}

func (q *Queue) wait(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *Queue) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (q *Queue) publish(ctx context.Context, key string, event eventbus.Event) {
	if q.bus == nil {
		return
	}

	if err := q.bus.Publish(ctx, key, event); err != nil {
		q.logger.WarnContext(ctx, "Failed to publish retry event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}
