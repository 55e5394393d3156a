// Package webhook implements the generic webhook platform adapter: it
// posts the carried data to the URL named in the step config.
package webhook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/platforms"
)

type Adapter struct {
	descriptor *models.PlatformDescriptor
	client     *http.Client
}

// NewFactory returns the adapter factory for the generic webhook platform.
func NewFactory() models.AdapterFactory {
	return func(descriptor *models.PlatformDescriptor) (models.Adapter, error) {
		return &Adapter{
			descriptor: descriptor,
			client:     &http.Client{},
		}, nil
	}
}

func (a *Adapter) PlatformID() string {
	return a.descriptor.ID
}

func (a *Adapter) Execute(ctx context.Context, step *models.Step, data map[string]any) (map[string]any, error) {
	url := platforms.StringConfig(step.Config, "url")
	if url == "" {
		return nil, fmt.Errorf("webhook step %s has no url configured", step.ID)
	}

	statusCode, response, err := platforms.PostJSON(ctx, a.client, a.descriptor, url, data)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status_code": statusCode,
		"response":    response,
	}, nil
}
