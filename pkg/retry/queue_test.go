package retry

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAutomation(url string, retryAttempts int) *models.AutomationConfig {
	return &models.AutomationConfig{
		ID:            "auto-1",
		Name:          "test",
		PlatformID:    models.PlatformGenericWebhook,
		Active:        true,
		TriggerEvents: []string{"message.received"},
		WebhookURL:    url,
		TimeoutMs:     5000,
		RetryAttempts: retryAttempts,
		RetryDelayMs:  1,
	}
}

func TestQueue_SuccessfulRetryResolvesItem(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	queue := NewQueue(testLogger(), dispatch.NewExecutor(testLogger()), nil)
	queue.Push(testAutomation(server.URL, 2), dispatch.Event{Kind: "message.received"}, 1)

	queue.Sweep(context.Background())

	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, queue.Len())
}

func TestQueue_RenewedFailureReenqueuesAtNextAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	queue := NewQueue(testLogger(), dispatch.NewExecutor(testLogger()), nil)
	queue.Push(testAutomation(server.URL, 3), dispatch.Event{Kind: "message.received"}, 1)

	queue.Sweep(context.Background())

	require.Equal(t, 1, queue.Len())

	queue.mu.Lock()
	attempt := queue.items[0].Attempt
	queue.mu.Unlock()

	assert.Equal(t, 2, attempt)
}

func TestQueue_ExhaustedBudgetDropsSilently(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	executor := dispatch.NewExecutor(testLogger())
	queue := NewQueue(testLogger(), executor, nil)
	queue.Push(testAutomation(server.URL, 1), dispatch.Event{Kind: "message.received"}, 1)

	// First sweep re-attempts once and re-enqueues at attempt 2; the
	// second sweep sees the budget exceeded and drops the item.
	queue.Sweep(context.Background())
	require.Equal(t, 1, queue.Len())

	historyBefore := executor.History().Len()

	queue.Sweep(context.Background())

	assert.Zero(t, queue.Len())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, historyBefore, executor.History().Len())
}

func TestQueue_NonRetryableFailureNotReenqueued(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	queue := NewQueue(testLogger(), dispatch.NewExecutor(testLogger()), nil)
	queue.Push(testAutomation(server.URL, 3), dispatch.Event{Kind: "message.received"}, 1)

	queue.Sweep(context.Background())

	assert.Zero(t, queue.Len())
}

func TestQueue_SweepPopsBoundedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	queue := NewQueue(testLogger(), dispatch.NewExecutor(testLogger()), nil)

	for i := 0; i < DefaultBatchSize+3; i++ {
		queue.Push(testAutomation(server.URL, 2), dispatch.Event{Kind: "message.received"}, 1)
	}

	queue.Sweep(context.Background())

	assert.Equal(t, 3, queue.Len())
}

func TestQueue_CancelledContextStopsWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	automation := testAutomation(server.URL, 2)
	automation.RetryDelayMs = 60_000

	queue := NewQueue(testLogger(), dispatch.NewExecutor(testLogger()), nil)
	queue.Push(automation, dispatch.Event{Kind: "message.received"}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queue.Sweep(ctx)

	assert.Zero(t, queue.Len())
}
