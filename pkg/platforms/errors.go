package platforms

import (
	"errors"
	"fmt"
)

// ErrPlatformNotFound is returned when a platform id is not in the catalog.
var ErrPlatformNotFound = errors.New("platform not found")

// ConnectionError reports a failed connectivity test against a platform.
// Configuration changes guarded by the test are rolled back when it is
// returned.
type ConnectionError struct {
	PlatformID string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connectivity test failed for platform %s: %v", e.PlatformID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks if the error is a connectivity test failure.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError

	return errors.As(err, &connErr)
}

// IsPlatformNotFound checks if the error indicates an unknown platform id.
func IsPlatformNotFound(err error) bool {
	return errors.Is(err, ErrPlatformNotFound)
}
