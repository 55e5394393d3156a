package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/models"
)

const maxAdapterResponseBytes = 64 * 1024

// PostJSON performs one authenticated JSON POST on behalf of a platform
// adapter. The response body is parsed as JSON when possible and wrapped
// under "raw" otherwise. Non-2xx/3xx statuses are errors.
func PostJSON(ctx context.Context, client *http.Client, descriptor *models.PlatformDescriptor, url string, body any) (int, map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range dispatch.AuthHeaders(descriptor.Auth) {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to platform %s failed: %w", descriptor.ID, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAdapterResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := decodeResponse(responseBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return resp.StatusCode, response,
			fmt.Errorf("platform %s returned status %d", descriptor.ID, resp.StatusCode)
	}

	return resp.StatusCode, response, nil
}

func decodeResponse(body []byte) map[string]any {
	if len(body) == 0 {
		return map[string]any{}
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed
	}

	return map[string]any{"raw": string(body)}
}

// StringConfig reads a string value from an opaque step config.
func StringConfig(config map[string]any, key string) string {
	value, _ := config[key].(string)

	return value
}
