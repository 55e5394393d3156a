package platforms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/models"
)

const connectivityTimeout = 10 * time.Second

// ConnectivityTester probes whether a platform is reachable with the
// descriptor's current credentials.
type ConnectivityTester interface {
	Test(ctx context.Context, descriptor *models.PlatformDescriptor) error
}

// TesterFunc adapts a function to the ConnectivityTester interface.
type TesterFunc func(ctx context.Context, descriptor *models.PlatformDescriptor) error

func (f TesterFunc) Test(ctx context.Context, descriptor *models.PlatformDescriptor) error {
	return f(ctx, descriptor)
}

// HTTPTester probes the platform's base endpoint over HTTP. A platform
// with no base endpoint is considered reachable; there is nothing to
// probe.
type HTTPTester struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPTester(logger *slog.Logger) *HTTPTester {
	return &HTTPTester{
		client: &http.Client{},
		logger: logger.With("module", "platforms"),
	}
}

func (t *HTTPTester) Test(ctx context.Context, descriptor *models.PlatformDescriptor) error {
	if descriptor.BaseEndpoint == "" {
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, descriptor.BaseEndpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	for key, value := range dispatch.AuthHeaders(descriptor.Auth) {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform unreachable: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	// A 401/403 means the endpoint answered but rejected the
	// credentials; anything else counts as reachable.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("credentials rejected with status %d", resp.StatusCode)
	}

	t.logger.DebugContext(ctx, "Connectivity probe succeeded",
		"platform_id", descriptor.ID,
		"status_code", resp.StatusCode,
	)

	return nil
}
