package dispatch

import (
	"errors"
	"fmt"
	"net/http"
)

// DispatchError reports a failed platform call at trigger time. It is
// captured into the per-automation result list, never thrown out of the
// dispatcher.
type DispatchError struct {
	AutomationID string
	StatusCode   int
	Timeout      bool
	Err          error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dispatch failed for automation %s: status %d", e.AutomationID, e.StatusCode)
	}

	if e.Timeout {
		return fmt.Sprintf("dispatch timed out for automation %s: %v", e.AutomationID, e.Err)
	}

	return fmt.Sprintf("dispatch failed for automation %s: %v", e.AutomationID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Retryable classifies the failure. Client errors are final, except 408
// and 429; timeouts, network errors and server errors are retryable.
func (e *DispatchError) Retryable() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusTooManyRequests
	}

	return true
}

// IsDispatchError extracts a DispatchError from an error chain.
func IsDispatchError(err error) (*DispatchError, bool) {
	var dispatchErr *DispatchError
	ok := errors.As(err, &dispatchErr)

	return dispatchErr, ok
}
