// Package dispatch shapes payloads and performs webhook calls for
// triggered automations.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
)

const maxResponseBytes = 2048

// Executor performs one dispatch attempt per call and records every
// attempt in a bounded history.
type Executor struct {
	client  *http.Client
	history *History
	logger  *slog.Logger
}

// NewExecutor creates an executor. The client's per-request deadline is
// taken from each automation's timeout, not from the client itself.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		client:  &http.Client{},
		history: NewHistory(DefaultHistoryCap),
		logger:  logger.With("module", "dispatch"),
	}
}

// History exposes the bounded dispatch result history.
func (e *Executor) History() *History {
	return e.history
}

// Dispatch performs exactly one call for the automation. The returned
// result is always populated; a non-nil DispatchError describes the
// failure and its retry eligibility.
func (e *Executor) Dispatch(ctx context.Context, automation *models.AutomationConfig, event Event) (*models.ExecutionResult, *DispatchError) {
	result := &models.ExecutionResult{
		AutomationID: automation.ID,
		EventKind:    event.Kind,
		Timestamp:    time.Now(),
	}

	started := time.Now()

	statusCode, response, err := e.attempt(ctx, automation, event)

	result.DurationMs = time.Since(started).Milliseconds()
	result.StatusCode = statusCode
	result.Response = truncate(response)

	if err != nil {
		dispatchErr := &DispatchError{
			AutomationID: automation.ID,
			StatusCode:   statusCode,
			Timeout:      errors.Is(err, context.DeadlineExceeded),
			Err:          err,
		}

		result.Error = truncate(dispatchErr.Error())
		e.history.Append(result)

		e.logger.WarnContext(ctx, "Dispatch attempt failed",
			"automation_id", automation.ID,
			"event_kind", event.Kind,
			"status_code", statusCode,
			"retryable", dispatchErr.Retryable(),
		)

		return result, dispatchErr
	}

	result.Success = true
	e.history.Append(result)

	e.logger.InfoContext(ctx, "Dispatch succeeded",
		"automation_id", automation.ID,
		"event_kind", event.Kind,
		"status_code", statusCode,
		"duration_ms", result.DurationMs,
	)

	return result, nil
}

func (e *Executor) attempt(ctx context.Context, automation *models.AutomationConfig, event Event) (int, string, error) {
	payload := BuildPayload(automation, event)

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	timeout := time.Duration(automation.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = models.MaxTimeoutMs * time.Millisecond
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, automation.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range BuildHeaders(automation) {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || requestCtx.Err() != nil {
			return 0, "", fmt.Errorf("request timed out after %s: %w", timeout, context.DeadlineExceeded)
		}

		return 0, "", fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		responseBody = nil
	}

	// Any 2xx or 3xx response is success.
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return resp.StatusCode, string(responseBody), nil
	}

	return resp.StatusCode, string(responseBody),
		fmt.Errorf("endpoint returned status %d", resp.StatusCode)
}

func truncate(s string) string {
	if len(s) > maxResponseBytes {
		return s[:maxResponseBytes]
	}

	return s
}
