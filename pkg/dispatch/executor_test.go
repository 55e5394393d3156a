package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAutomation(url string) *models.AutomationConfig {
	return &models.AutomationConfig{
		ID:            "auto-1",
		Name:          "test",
		PlatformID:    models.PlatformGenericWebhook,
		Active:        true,
		TriggerEvents: []string{"message.received"},
		WebhookURL:    url,
		TimeoutMs:     5000,
		RetryAttempts: 2,
		RetryDelayMs:  100,
	}
}

func TestExecutor_DispatchSuccess(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	executor := NewExecutor(testLogger())
	result, dispatchErr := executor.Dispatch(context.Background(), testAutomation(server.URL),
		Event{Kind: "message.received", Payload: map[string]any{"text": "hi"}})

	require.Nil(t, dispatchErr)
	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "message.received", received["event"])
	assert.Equal(t, SourceMarker, received["source"])
	assert.Equal(t, 1, executor.History().Len())
}

func TestExecutor_RedirectStatusIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	executor := NewExecutor(testLogger())
	result, dispatchErr := executor.Dispatch(context.Background(), testAutomation(server.URL), Event{Kind: "x"})

	require.Nil(t, dispatchErr)
	assert.True(t, result.Success)
}

func TestExecutor_FailureClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusNotFound, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			executor := NewExecutor(testLogger())
			result, dispatchErr := executor.Dispatch(context.Background(), testAutomation(server.URL), Event{Kind: "x"})

			require.NotNil(t, dispatchErr)
			assert.False(t, result.Success)
			assert.Equal(t, tc.status, result.StatusCode)
			assert.Equal(t, tc.retryable, dispatchErr.Retryable())
		})
	}
}

func TestExecutor_TimeoutIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	automation := testAutomation(server.URL)
	automation.TimeoutMs = models.MinTimeoutMs

	executor := NewExecutor(testLogger())
	result, dispatchErr := executor.Dispatch(context.Background(), automation, Event{Kind: "x"})

	require.NotNil(t, dispatchErr)
	assert.False(t, result.Success)
	assert.True(t, dispatchErr.Timeout)
	assert.True(t, dispatchErr.Retryable())
}

func TestExecutor_NetworkErrorIsRetryable(t *testing.T) {
	automation := testAutomation("http://127.0.0.1:1/unreachable")

	executor := NewExecutor(testLogger())
	result, dispatchErr := executor.Dispatch(context.Background(), automation, Event{Kind: "x"})

	require.NotNil(t, dispatchErr)
	assert.False(t, result.Success)
	assert.Zero(t, result.StatusCode)
	assert.True(t, dispatchErr.Retryable())
}

func TestExecutor_AuthAndCustomHeadersSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "acme", r.Header.Get("X-Tenant"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	automation := testAutomation(server.URL)
	automation.Auth = models.AuthConfig{Scheme: models.AuthBearer, Token: "tok"}
	automation.Headers = map[string]string{"X-Tenant": "acme"}

	executor := NewExecutor(testLogger())
	_, dispatchErr := executor.Dispatch(context.Background(), automation, Event{Kind: "x"})

	require.Nil(t, dispatchErr)
}

func TestHistory_EvictsOldestPastCap(t *testing.T) {
	history := NewHistory(3)

	for i := 0; i < 5; i++ {
		history.Append(&models.ExecutionResult{AutomationID: fmt.Sprintf("auto-%d", i)})
	}

	snapshot := history.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "auto-2", snapshot[0].AutomationID)
	assert.Equal(t, "auto-4", snapshot[2].AutomationID)
}
